package service

import (
	"errors"
	"time"

	"scholarly-backend/internal/model"
	"scholarly-backend/internal/repository"
)

// In-memory repository fakes for service-level tests.

var errFakeNotFound = errors.New("not found")

type fakePaperRepo struct {
	papers    map[string]*model.Paper
	concepts  map[string][]model.Concept
	sections  map[string][]model.Section
	edges     map[string][]model.ConceptEdge
	summaries map[string]*model.PaperSummary
}

func newFakePaperRepo() *fakePaperRepo {
	return &fakePaperRepo{
		papers:    make(map[string]*model.Paper),
		concepts:  make(map[string][]model.Concept),
		sections:  make(map[string][]model.Section),
		edges:     make(map[string][]model.ConceptEdge),
		summaries: make(map[string]*model.PaperSummary),
	}
}

func (f *fakePaperRepo) CreatePaper(paper *model.Paper) error {
	f.papers[paper.ID] = paper
	return nil
}

func (f *fakePaperRepo) GetPaperByID(paperID string) (*model.Paper, error) {
	paper, ok := f.papers[paperID]
	if !ok {
		return nil, repository.ErrPaperNotFound
	}
	return paper, nil
}

func (f *fakePaperRepo) GetPapersByUser(userID string) ([]model.Paper, error) {
	var papers []model.Paper
	for _, p := range f.papers {
		if p.UserID == userID {
			papers = append(papers, *p)
		}
	}
	return papers, nil
}

func (f *fakePaperRepo) UpdatePaperStatus(paperID, status string) error {
	if paper, ok := f.papers[paperID]; ok {
		paper.Status = status
	}
	return nil
}

func (f *fakePaperRepo) SaveExtraction(paperID string, sections []model.Section, concepts []model.Concept, edges []model.ConceptEdge) error {
	f.sections[paperID] = sections
	f.concepts[paperID] = concepts
	f.edges[paperID] = edges
	return nil
}

func (f *fakePaperRepo) GetSectionsByPaper(paperID string) ([]model.Section, error) {
	return f.sections[paperID], nil
}

func (f *fakePaperRepo) GetConceptsByPaper(paperID string) ([]model.Concept, error) {
	return f.concepts[paperID], nil
}

func (f *fakePaperRepo) GetEdgesByPaper(paperID string) ([]model.ConceptEdge, error) {
	return f.edges[paperID], nil
}

func (f *fakePaperRepo) GetSummary(paperID string) (*model.PaperSummary, error) {
	summary, ok := f.summaries[paperID]
	if !ok {
		return nil, repository.ErrSummaryNotFound
	}
	return summary, nil
}

func (f *fakePaperRepo) SaveSummary(summary *model.PaperSummary) error {
	f.summaries[summary.PaperID] = summary
	return nil
}

func (f *fakePaperRepo) DeleteSummary(paperID string) error {
	delete(f.summaries, paperID)
	return nil
}

func (f *fakePaperRepo) DeletePaper(paperID string) error {
	delete(f.papers, paperID)
	delete(f.sections, paperID)
	delete(f.concepts, paperID)
	delete(f.edges, paperID)
	delete(f.summaries, paperID)
	return nil
}

type fakeQuizRepo struct {
	quizzes map[string]*model.Quiz
	results []model.QuizResult
}

func newFakeQuizRepo() *fakeQuizRepo {
	return &fakeQuizRepo{quizzes: make(map[string]*model.Quiz)}
}

func (f *fakeQuizRepo) CreateQuiz(quiz *model.Quiz) error {
	f.quizzes[quiz.ID] = quiz
	return nil
}

func (f *fakeQuizRepo) GetQuizByID(quizID string) (*model.Quiz, error) {
	quiz, ok := f.quizzes[quizID]
	if !ok {
		return nil, repository.ErrQuizNotFound
	}
	return quiz, nil
}

func (f *fakeQuizRepo) AppendResult(result *model.QuizResult) error {
	f.results = append(f.results, *result)
	return nil
}

func (f *fakeQuizRepo) GetResultsByUserAndPaper(userID, paperID string) ([]model.QuizResult, error) {
	var results []model.QuizResult
	for _, r := range f.results {
		if r.UserID == userID && r.PaperID == paperID {
			results = append(results, r)
		}
	}
	return results, nil
}

func (f *fakeQuizRepo) GetResultsByUser(userID string) ([]model.QuizResult, error) {
	var results []model.QuizResult
	for _, r := range f.results {
		if r.UserID == userID {
			results = append(results, r)
		}
	}
	return results, nil
}

type fakeProgressRepo struct {
	understandings map[string]*model.ConceptUnderstanding // keyed user|concept
	sessions       map[string]*model.StudySession
	loadErr        error // returned by GetUnderstanding when set
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{
		understandings: make(map[string]*model.ConceptUnderstanding),
		sessions:       make(map[string]*model.StudySession),
	}
}

func (f *fakeProgressRepo) GetUnderstanding(userID, conceptID string) (*model.ConceptUnderstanding, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	u, ok := f.understandings[userID+"|"+conceptID]
	if !ok {
		return nil, repository.ErrUnderstandingNotFound
	}
	return u, nil
}

func (f *fakeProgressRepo) GetUnderstandingsByUserAndPaper(userID, paperID string) ([]model.ConceptUnderstanding, error) {
	var us []model.ConceptUnderstanding
	for _, u := range f.understandings {
		if u.UserID == userID && u.PaperID == paperID {
			us = append(us, *u)
		}
	}
	return us, nil
}

func (f *fakeProgressRepo) GetUnderstandingsByUser(userID string) ([]model.ConceptUnderstanding, error) {
	var us []model.ConceptUnderstanding
	for _, u := range f.understandings {
		if u.UserID == userID {
			us = append(us, *u)
		}
	}
	return us, nil
}

func (f *fakeProgressRepo) SaveUnderstanding(u *model.ConceptUnderstanding) error {
	copied := *u
	f.understandings[u.UserID+"|"+u.ConceptID] = &copied
	return nil
}

func (f *fakeProgressRepo) CreateStudySession(session *model.StudySession) error {
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeProgressRepo) EndStudySession(sessionID string, endTime time.Time) error {
	session, ok := f.sessions[sessionID]
	if !ok {
		return errFakeNotFound
	}
	session.EndTime = &endTime
	session.Duration = int(endTime.Sub(session.StartTime).Seconds())
	return nil
}

func (f *fakeProgressRepo) GetSessionsByUser(userID string) ([]model.StudySession, error) {
	var sessions []model.StudySession
	for _, s := range f.sessions {
		if s.UserID == userID {
			sessions = append(sessions, *s)
		}
	}
	return sessions, nil
}
