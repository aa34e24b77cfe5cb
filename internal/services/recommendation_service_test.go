package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/sashabaranov/go-openai"

	"github.com/rakitcita/platform-service/internal/cache"
	"github.com/rakitcita/platform-service/internal/models"
	"github.com/rakitcita/platform-service/internal/repositories"
	"github.com/rakitcita/platform-service/internal/validator"
)

// ===== STUBS =====

type stubCourseRepo struct {
	courses []*models.Course
}

func (s *stubCourseRepo) Create(ctx context.Context, course *models.Course) error { return nil }
func (s *stubCourseRepo) GetByID(ctx context.Context, id string) (*models.Course, error) {
	return nil, nil
}
func (s *stubCourseRepo) Update(ctx context.Context, course *models.Course) error { return nil }
func (s *stubCourseRepo) Delete(ctx context.Context, id string) error             { return nil }
func (s *stubCourseRepo) List(ctx context.Context, filters repositories.CourseFilters) ([]*models.Course, int64, error) {
	return s.courses, int64(len(s.courses)), nil
}

type stubCommunityRepo struct {
	communities []*models.Community
}

func (s *stubCommunityRepo) Create(ctx context.Context, community *models.Community) error {
	return nil
}
func (s *stubCommunityRepo) GetByID(ctx context.Context, id string) (*models.Community, error) {
	return nil, nil
}
func (s *stubCommunityRepo) Update(ctx context.Context, community *models.Community) error {
	return nil
}
func (s *stubCommunityRepo) Delete(ctx context.Context, id string) error { return nil }
func (s *stubCommunityRepo) List(ctx context.Context, filters repositories.CommunityFilters) ([]*models.Community, int64, error) {
	return s.communities, int64(len(s.communities)), nil
}

type stubRepository struct {
	courses     []*models.Course
	communities []*models.Community
}

func (r *stubRepository) User() repositories.UserRepository { return nil }
func (r *stubRepository) Course() repositories.CourseRepository {
	return &stubCourseRepo{courses: r.courses}
}
func (r *stubRepository) Enrollment() repositories.EnrollmentRepository { return nil }
func (r *stubRepository) Community() repositories.CommunityRepository {
	return &stubCommunityRepo{communities: r.communities}
}
func (r *stubRepository) Membership() repositories.MembershipRepository { return nil }
func (r *stubRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(r)
}
func (r *stubRepository) Ping(ctx context.Context) error { return nil }
func (r *stubRepository) Close() error                   { return nil }

type stubCompleter struct {
	reply string
	err   error
}

func (s *stubCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if s.err != nil {
		return openai.ChatCompletionResponse{}, s.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: s.reply}},
		},
	}, nil
}

// ===== HELPERS =====

func strPtr(s string) *string { return &s }

func newRecommendationFixture(reply string, replyErr error) (RecommendationService, *stubRepository) {
	repo := &stubRepository{
		courses: []*models.Course{
			{ID: "course-1", Title: "Intro to Screen Readers", Level: models.LevelBeginner, Description: strPtr("Basics of assistive technology")},
			{ID: "course-2", Title: "Advanced Braille", Level: models.LevelAdvanced},
		},
		communities: []*models.Community{
			{ID: "comm-1", Name: "Low Vision Devs", Description: strPtr("Peer support")},
		},
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	svc := NewRecommendationService(repo, &stubCompleter{reply: reply, err: replyErr}, "test-model", cache.NewCacheHelper(nil, ""), logger, validator.New())
	return svc, repo
}

// ===== TESTS =====

func TestRecommendationService_Recommend(t *testing.T) {
	ctx := context.Background()

	t.Run("plain JSON reply", func(t *testing.T) {
		svc, _ := newRecommendationFixture(`{"courses":[{"id":"course-1","reason":"fits bio"}],"communities":[{"id":"comm-1","reason":"peer support"}]}`, nil)

		resp, err := svc.Recommend(ctx, "user-1", &RecommendationRequest{Bio: "blind developer"})
		if err != nil {
			t.Fatalf("Recommend failed: %v", err)
		}
		if len(resp.Courses) != 1 || resp.Courses[0].Course.ID != "course-1" {
			t.Errorf("Expected course-1 recommended, got %+v", resp.Courses)
		}
		if resp.Courses[0].Reason != "fits bio" {
			t.Errorf("Expected reason 'fits bio', got %q", resp.Courses[0].Reason)
		}
		if len(resp.Communities) != 1 || resp.Communities[0].Community.ID != "comm-1" {
			t.Errorf("Expected comm-1 recommended, got %+v", resp.Communities)
		}
	})

	t.Run("code-fenced reply", func(t *testing.T) {
		svc, _ := newRecommendationFixture("```json\n{\"courses\":[{\"id\":\"course-2\",\"reason\":\"next step\"}],\"communities\":[]}\n```", nil)

		resp, err := svc.Recommend(ctx, "user-1", &RecommendationRequest{})
		if err != nil {
			t.Fatalf("Recommend failed on fenced reply: %v", err)
		}
		if len(resp.Courses) != 1 || resp.Courses[0].Course.ID != "course-2" {
			t.Errorf("Expected course-2 recommended, got %+v", resp.Courses)
		}
	})

	t.Run("unknown ids dropped", func(t *testing.T) {
		svc, _ := newRecommendationFixture(`{"courses":[{"id":"made-up","reason":"hallucinated"},{"id":"course-1","reason":"real"}],"communities":[{"id":"also-fake","reason":"no"}]}`, nil)

		resp, err := svc.Recommend(ctx, "user-1", &RecommendationRequest{})
		if err != nil {
			t.Fatalf("Recommend failed: %v", err)
		}
		if len(resp.Courses) != 1 || resp.Courses[0].Course.ID != "course-1" {
			t.Errorf("Expected only course-1 to survive filtering, got %+v", resp.Courses)
		}
		if len(resp.Communities) != 0 {
			t.Errorf("Expected fabricated community dropped, got %+v", resp.Communities)
		}
		if resp.Communities == nil {
			t.Error("Empty community list must be non-nil")
		}
	})

	t.Run("unparseable reply", func(t *testing.T) {
		svc, _ := newRecommendationFixture("I think you would enjoy learning Go!", nil)

		_, err := svc.Recommend(ctx, "user-1", &RecommendationRequest{})
		if !errors.Is(err, ErrRecommendationParse) {
			t.Errorf("Expected ErrRecommendationParse, got %v", err)
		}
	})

	t.Run("upstream failure", func(t *testing.T) {
		svc, _ := newRecommendationFixture("", fmt.Errorf("connection refused"))

		_, err := svc.Recommend(ctx, "user-1", &RecommendationRequest{})
		if !errors.Is(err, ErrRecommendationUpstream) {
			t.Errorf("Expected ErrRecommendationUpstream, got %v", err)
		}
	})

	t.Run("no candidates", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
		svc := NewRecommendationService(&stubRepository{}, &stubCompleter{}, "test-model", cache.NewCacheHelper(nil, ""), logger, validator.New())

		_, err := svc.Recommend(ctx, "user-1", &RecommendationRequest{})
		if !errors.Is(err, ErrNoCandidates) {
			t.Errorf("Expected ErrNoCandidates, got %v", err)
		}
	})
}

func TestParseRecommendationReply(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"bare object", `{"courses":[],"communities":[]}`, false},
		{"fenced object", "```json\n{\"courses\":[],\"communities\":[]}\n```", false},
		{"surrounding prose", "Here you go: {\"courses\":[],\"communities\":[]} enjoy!", false},
		{"no braces", "no structured data here", true},
		{"broken json", "{not valid json}", true},
		{"empty string", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseRecommendationReply(tt.content)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseRecommendationReply() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrRecommendationParse) {
				t.Errorf("Parse failures must wrap ErrRecommendationParse, got %v", err)
			}
		})
	}
}

func TestBuildRecommendationPrompt_Truncation(t *testing.T) {
	longBio := strings.Repeat("a", 500)
	longDesc := strings.Repeat("b", 500)

	prompt := buildRecommendationPrompt(longBio, "", []*models.Course{
		{ID: "c1", Title: "T", Level: models.LevelAll, Description: &longDesc},
	}, nil)

	if strings.Contains(prompt, strings.Repeat("a", candidateDescriptionLimit+1)) {
		t.Error("Bio must be truncated in the prompt")
	}
	if strings.Contains(prompt, strings.Repeat("b", candidateDescriptionLimit+1)) {
		t.Error("Course description must be truncated in the prompt")
	}
	if !strings.Contains(prompt, "id=c1") {
		t.Error("Prompt must list candidate ids")
	}
}

func TestTruncate_RuneBoundaries(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{"short string untouched", "halo", 150, "halo"},
		{"ascii cut", strings.Repeat("a", 200), 3, "aaa"},
		{"multibyte cut stays valid", strings.Repeat("é", 200), 3, "ééé"},
		{"mixed text", "aé" + strings.Repeat("ü", 200), 2, "aé"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncate(tt.in, tt.limit)
			if got != tt.want {
				t.Errorf("truncate() = %q, want %q", got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncate() produced invalid UTF-8: %q", got)
			}
		})
	}
}
