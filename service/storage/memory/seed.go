package memory

import (
	"context"
	"time"

	"github.com/GitSid-glitch/cobuild/service/storage"
)

// SeedDemo loads the built-in demo fixtures so the server is browsable
// without signing up.
func (s *Store) SeedDemo(ctx context.Context) error {
	now := time.Now().UnixMilli()
	day := int64(24 * time.Hour / time.Millisecond)

	demo := &storage.User{
		ID:               "demo-user-123",
		Email:            "demo@cobuild.com",
		FullName:         "Demo User",
		Bio:              "Passionate about building innovative solutions and collaborating with talented individuals.",
		Skills:           []string{"React", "Python", "Machine Learning", "UI/UX Design", "Node.js", "Product Management"},
		ReputationPoints: 1250,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.CreateUser(ctx, demo); err != nil {
		return err
	}

	ideas := []*storage.Idea{
		{
			ID:                "idea-1",
			OwnerID:           demo.ID,
			Title:             "AI-Powered Study Scheduler",
			Description:       "An intelligent app that optimizes study schedules based on learning patterns and deadlines.",
			Tags:              []string{"AI", "Education", "Mobile App"},
			Category:          "Education",
			Status:            storage.IdeaStatusActive,
			CollaboratorCount: 3,
			CreatedAt:         now - 2*day,
			UpdatedAt:         now,
		},
		{
			ID:                "idea-2",
			OwnerID:           demo.ID,
			Title:             "Campus Food Sharing Platform",
			Description:       "Connect students to share extra meal swipes and reduce food waste on campus.",
			Tags:              []string{"Social Impact", "Mobile App", "Sustainability"},
			Category:          "Social Impact",
			Status:            storage.IdeaStatusActive,
			CollaboratorCount: 5,
			CreatedAt:         now - 7*day,
			UpdatedAt:         now,
		},
	}
	for _, idea := range ideas {
		if err := s.CreateIdea(ctx, idea); err != nil {
			return err
		}
	}
	return nil
}
