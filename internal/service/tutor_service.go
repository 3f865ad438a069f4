package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"scholarly-backend/internal/model"
	"scholarly-backend/internal/repository"
	"scholarly-backend/utilities"
)

// SocraticTutor generates a tutoring reply for a student question.
// Satisfied by the Ollama client.
type SocraticTutor interface {
	SocraticReply(question, context string, conceptNames []string) (string, error)
}

type TutorService interface {
	StartChat(userID, paperID, mode string) (*model.ChatSession, error)
	SendMessage(userID, sessionID, question string) (*model.ChatMessage, error)
	GetChatSession(userID, sessionID string) (*model.ChatSession, error)
	GetChatSessions(userID, paperID string) ([]model.ChatSession, error)
}

type tutorService struct {
	chatRepo     repository.ChatRepository
	paperRepo    repository.PaperRepository
	progressRepo repository.ProgressRepository
	tutor        SocraticTutor
}

func NewTutorService(chatRepo repository.ChatRepository, paperRepo repository.PaperRepository, progressRepo repository.ProgressRepository, tutor SocraticTutor) TutorService {
	return &tutorService{
		chatRepo:     chatRepo,
		paperRepo:    paperRepo,
		progressRepo: progressRepo,
		tutor:        tutor,
	}
}

func (s *tutorService) StartChat(userID, paperID, mode string) (*model.ChatSession, error) {
	paper, err := s.paperRepo.GetPaperByID(paperID)
	if err != nil {
		return nil, err
	}
	if paper.Status != model.PaperStatusReady {
		return nil, fmt.Errorf("paper %s is not ready for tutoring (status %s)", paperID, paper.Status)
	}
	if mode != "direct" {
		mode = "socratic"
	}
	session := &model.ChatSession{
		ID:      uuid.New().String(),
		UserID:  userID,
		PaperID: paperID,
		Mode:    mode,
	}
	if err := s.chatRepo.CreateSession(session); err != nil {
		return nil, fmt.Errorf("failed to create chat session: %w", err)
	}
	return session, nil
}

// SendMessage records the student question, retrieves paper context for it,
// asks the tutor model for a reply and records that too.
func (s *tutorService) SendMessage(userID, sessionID, question string) (*model.ChatMessage, error) {
	session, err := s.chatRepo.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, repository.ErrChatSessionNotFound
	}

	if err := s.chatRepo.AppendMessage(&model.ChatMessage{
		SessionID: sessionID,
		Role:      "user",
		Content:   question,
	}); err != nil {
		return nil, fmt.Errorf("failed to record message: %w", err)
	}

	context, conceptNames := s.retrieveContext(userID, session.PaperID, question)

	reply, err := s.tutor.SocraticReply(question, context, conceptNames)
	if err != nil {
		return nil, fmt.Errorf("tutor reply failed: %w", err)
	}

	msg := &model.ChatMessage{
		SessionID: sessionID,
		Role:      "assistant",
		Content:   reply,
	}
	if err := s.chatRepo.AppendMessage(msg); err != nil {
		return nil, fmt.Errorf("failed to record reply: %w", err)
	}
	return msg, nil
}

func (s *tutorService) GetChatSession(userID, sessionID string) (*model.ChatSession, error) {
	session, err := s.chatRepo.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, repository.ErrChatSessionNotFound
	}
	return session, nil
}

func (s *tutorService) GetChatSessions(userID, paperID string) ([]model.ChatSession, error) {
	return s.chatRepo.GetSessionsByUserAndPaper(userID, paperID)
}

// retrieveContext picks the sections most relevant to the question by
// keyword overlap, plus the names of concepts the student is still weak on
// so the tutor can steer toward them.
func (s *tutorService) retrieveContext(userID, paperID, question string) (string, []string) {
	sections, err := s.paperRepo.GetSectionsByPaper(paperID)
	if err != nil {
		utilities.Warn("failed to load sections for chat context: %v", err)
	}
	context := RankSectionsByKeywords(sections, question, 3)

	concepts, err := s.paperRepo.GetConceptsByPaper(paperID)
	if err != nil {
		utilities.Warn("failed to load concepts for chat context: %v", err)
		return context, nil
	}
	understandings, err := s.progressRepo.GetUnderstandingsByUserAndPaper(userID, paperID)
	if err != nil {
		utilities.Warn("failed to load understanding for chat context: %v", err)
	}
	understood := make(map[string]bool, len(understandings))
	for _, u := range understandings {
		understood[u.ConceptID] = u.IsUnderstood
	}

	var names []string
	for _, c := range concepts {
		if !understood[c.ID] {
			names = append(names, c.Name)
		}
		if len(names) == 5 {
			break
		}
	}
	return context, names
}

// RankSectionsByKeywords scores sections by how many query words they
// contain and joins the top n into one excerpt block.
func RankSectionsByKeywords(sections []model.Section, query string, n int) string {
	words := keywords(query)
	if len(sections) == 0 {
		return ""
	}

	type scored struct {
		section model.Section
		score   int
	}
	ranked := make([]scored, 0, len(sections))
	for _, sec := range sections {
		content := strings.ToLower(sec.Content)
		score := 0
		for _, w := range words {
			score += strings.Count(content, w)
		}
		ranked = append(ranked, scored{section: sec, score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if n > len(ranked) {
		n = len(ranked)
	}
	var b strings.Builder
	for _, r := range ranked[:n] {
		if r.score == 0 && b.Len() > 0 {
			break
		}
		excerpt := r.section.Content
		if len(excerpt) > 800 {
			excerpt = excerpt[:800]
		}
		fmt.Fprintf(&b, "[%s]\n%s\n\n", r.section.Title, excerpt)
	}
	return strings.TrimSpace(b.String())
}

func keywords(query string) []string {
	stop := map[string]bool{
		"the": true, "a": true, "an": true, "is": true, "are": true,
		"what": true, "why": true, "how": true, "does": true, "do": true,
		"of": true, "in": true, "to": true, "and": true, "or": true,
		"this": true, "that": true, "it": true, "can": true, "you": true,
	}
	fields := strings.Fields(strings.ToLower(query))
	var words []string
	for _, f := range fields {
		f = strings.Trim(f, ".,?!\"'()")
		if len(f) < 3 || stop[f] {
			continue
		}
		words = append(words, f)
	}
	return words
}
