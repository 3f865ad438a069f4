package main

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"scholarly-backend/internal/db"
	"scholarly-backend/internal/model"
	"scholarly-backend/utilities"
)

// seedDatabase inserts a demo user with one processed paper so a fresh
// install has something to quiz against. Runs only when DB INITIALIZE is
// set in config.xml; existing rows are left alone.
func seedDatabase() {
	conn := db.GetDB()

	var count int64
	conn.Model(&model.User{}).Where("email = ?", "demo@scholarly.local").Count(&count)
	if count > 0 {
		utilities.Info("seed data already present, skipping")
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("demo-password"), bcrypt.DefaultCost)
	if err != nil {
		utilities.Error("seed: failed to hash demo password: %v", err)
		return
	}

	user := model.User{
		ID:       "demo-user",
		Username: "demo",
		Email:    "demo@scholarly.local",
		Password: string(hashed),
		FullName: "Demo Student",
	}
	if err := conn.Create(&user).Error; err != nil {
		utilities.Error("seed: failed to create demo user: %v", err)
		return
	}

	now := time.Now().UTC()
	paper := model.Paper{
		ID:          "demo-paper",
		UserID:      user.ID,
		Filename:    "attention-is-all-you-need.pdf",
		Title:       "Attention Is All You Need",
		Status:      model.PaperStatusReady,
		TotalPages:  11,
		ProcessedAt: &now,
	}
	if err := conn.Create(&paper).Error; err != nil {
		utilities.Error("seed: failed to create demo paper: %v", err)
		return
	}

	sections := []model.Section{
		{
			ID:      "demo-section-1",
			PaperID: paper.ID,
			Title:   "Introduction",
			Content: "Recurrent models process sequences token by token, which limits parallelism. " +
				"The transformer replaces recurrence entirely with attention, allowing every position " +
				"to attend to every other position in constant sequential steps.",
			PageStart: 1, PageEnd: 2,
		},
		{
			ID:      "demo-section-2",
			PaperID: paper.ID,
			Title:   "Model Architecture",
			Content: "Scaled dot-product attention computes softmax(QK^T / sqrt(d_k))V. Multi-head " +
				"attention runs several attention functions in parallel over learned projections and " +
				"concatenates the results. Positional encodings inject order information.",
			PageStart: 3, PageEnd: 6,
		},
	}
	for i := range sections {
		if err := conn.Create(&sections[i]).Error; err != nil {
			utilities.Error("seed: failed to create section: %v", err)
			return
		}
	}

	concepts := []model.Concept{
		{
			ID:              "demo-concept-attention",
			PaperID:         paper.ID,
			Name:            "Scaled Dot-Product Attention",
			Definition:      "An attention function mapping queries and key-value pairs to a weighted sum of values.",
			Difficulty:      model.DifficultyIntermediate,
			ImportanceScore: 0.95,
		},
		{
			ID:              "demo-concept-multihead",
			PaperID:         paper.ID,
			Name:            "Multi-Head Attention",
			Definition:      "Running several attention functions in parallel over different learned projections.",
			Difficulty:      model.DifficultyIntermediate,
			ImportanceScore: 0.85,
		},
		{
			ID:              "demo-concept-posenc",
			PaperID:         paper.ID,
			Name:            "Positional Encoding",
			Definition:      "Deterministic signals added to embeddings so the model can use token order.",
			Difficulty:      model.DifficultyBeginner,
			ImportanceScore: 0.6,
		},
	}
	for i := range concepts {
		if err := conn.Create(&concepts[i]).Error; err != nil {
			utilities.Error("seed: failed to create concept: %v", err)
			return
		}
	}

	edges := []model.ConceptEdge{
		{PaperID: paper.ID, SourceID: "demo-concept-attention", TargetID: "demo-concept-multihead", RelationshipType: "prerequisite", Strength: 1.0},
	}
	for i := range edges {
		if err := conn.Create(&edges[i]).Error; err != nil {
			utilities.Error("seed: failed to create concept edge: %v", err)
			return
		}
	}

	utilities.Info("seeded demo user %s with paper %q", user.Email, paper.Title)
}
