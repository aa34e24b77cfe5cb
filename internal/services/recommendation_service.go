package services

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/rakitcita/platform-service/internal/cache"
	"github.com/rakitcita/platform-service/internal/models"
	"github.com/rakitcita/platform-service/internal/repositories"
	"github.com/rakitcita/platform-service/internal/validator"
)

const candidateDescriptionLimit = 150

// chatCompleter is the slice of the OpenAI client the service uses,
// extracted so tests can stub the upstream.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type recommendationService struct {
	repo      repositories.Repository
	client    chatCompleter
	model     string
	cache     *cache.CacheHelper
	logger    *slog.Logger
	validator *validator.Validator
}

func NewRecommendationService(
	repo repositories.Repository,
	client chatCompleter,
	model string,
	cacheHelper *cache.CacheHelper,
	logger *slog.Logger,
	validator *validator.Validator,
) RecommendationService {
	return &recommendationService{
		repo:      repo,
		client:    client,
		model:     model,
		cache:     cacheHelper,
		logger:    logger,
		validator: validator,
	}
}

// recommendationReply is the JSON shape the model is asked to produce.
type recommendationReply struct {
	Courses     []recommendedID `json:"courses"`
	Communities []recommendedID `json:"communities"`
}

type recommendedID struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

func (s *recommendationService) Recommend(ctx context.Context, userID string, req *RecommendationRequest) (*RecommendationResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	// Upstream calls are expensive; a repeat request with the same profile
	// text within the cache TTL gets the cached reply.
	cacheKey := recommendationCacheKey(userID, req)
	var cached RecommendationResponse
	if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
		return &cached, nil
	}

	// Candidate set: everything listable, unpaginated.
	courses, _, err := s.repo.Course().List(ctx, repositories.CourseFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list courses: %w", err)
	}
	communities, _, err := s.repo.Community().List(ctx, repositories.CommunityFilters{})
	if err != nil {
		return nil, fmt.Errorf("failed to list communities: %w", err)
	}

	if len(courses) == 0 && len(communities) == 0 {
		return nil, ErrNoCandidates
	}

	prompt := buildRecommendationPrompt(req.Bio, req.DisabilityDetails, courses, communities)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0.3,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an accessibility-aware learning advisor. Reply with a single JSON object and nothing else.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		s.logger.Error("chat completion failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrRecommendationUpstream, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty choice list", ErrRecommendationUpstream)
	}

	reply, err := parseRecommendationReply(resp.Choices[0].Message.Content)
	if err != nil {
		s.logger.Warn("unparseable recommendation reply", "user_id", userID, "error", err)
		return nil, err
	}

	result := s.hydrate(reply, courses, communities)

	if err := s.cache.Set(ctx, cacheKey, result, cache.RecommendationCacheConfig.TTL); err != nil {
		s.logger.Warn("failed to cache recommendation reply", "user_id", userID, "error", err)
	}

	return result, nil
}

// recommendationCacheKey scopes the cached reply to the user and the exact
// profile text they sent, so a changed bio bypasses the stale entry.
func recommendationCacheKey(userID string, req *RecommendationRequest) string {
	h := fnv.New64a()
	h.Write([]byte(req.Bio))
	h.Write([]byte{0})
	h.Write([]byte(req.DisabilityDetails))
	return fmt.Sprintf("user:%s:%x", userID, h.Sum64())
}

// hydrate resolves the model's ids back to full records, dropping any id not
// in the candidate set.
func (s *recommendationService) hydrate(reply *recommendationReply, courses []*models.Course, communities []*models.Community) *RecommendationResponse {
	courseByID := make(map[string]*models.Course, len(courses))
	for _, c := range courses {
		courseByID[c.ID] = c
	}
	communityByID := make(map[string]*models.Community, len(communities))
	for _, c := range communities {
		communityByID[c.ID] = c
	}

	out := &RecommendationResponse{
		Courses:     []RecommendedCourse{},
		Communities: []RecommendedCommunity{},
	}
	for _, rec := range reply.Courses {
		if course, ok := courseByID[rec.ID]; ok {
			out.Courses = append(out.Courses, RecommendedCourse{Course: course, Reason: rec.Reason})
		}
	}
	for _, rec := range reply.Communities {
		if community, ok := communityByID[rec.ID]; ok {
			out.Communities = append(out.Communities, RecommendedCommunity{Community: community, Reason: rec.Reason})
		}
	}
	return out
}

func buildRecommendationPrompt(bio, disabilityDetails string, courses []*models.Course, communities []*models.Community) string {
	var b strings.Builder

	b.WriteString("Recommend courses and communities for this learner.\n\n")
	b.WriteString("Learner bio: ")
	b.WriteString(truncate(bio, candidateDescriptionLimit))
	b.WriteString("\nAccessibility needs: ")
	b.WriteString(truncate(disabilityDetails, candidateDescriptionLimit))
	b.WriteString("\n\nCourses:\n")
	for _, c := range courses {
		desc := ""
		if c.Description != nil {
			desc = *c.Description
		}
		fmt.Fprintf(&b, "- id=%s title=%q level=%s description=%q\n",
			c.ID, c.Title, c.Level, truncate(desc, candidateDescriptionLimit))
	}
	b.WriteString("\nCommunities:\n")
	for _, c := range communities {
		desc := ""
		if c.Description != nil {
			desc = *c.Description
		}
		fmt.Fprintf(&b, "- id=%s name=%q description=%q\n",
			c.ID, c.Name, truncate(desc, candidateDescriptionLimit))
	}
	b.WriteString("\nReply with JSON: {\"courses\":[{\"id\":\"...\",\"reason\":\"...\"}],\"communities\":[{\"id\":\"...\",\"reason\":\"...\"}]}.")
	b.WriteString(" Only use ids listed above.")

	return b.String()
}

// parseRecommendationReply extracts the JSON object from the model output,
// tolerating markdown code fences around it.
func parseRecommendationReply(content string) (*recommendationReply, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("%w: no JSON object in reply", ErrRecommendationParse)
	}

	var reply recommendationReply
	if err := json.Unmarshal([]byte(content[start:end+1]), &reply); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRecommendationParse, err)
	}

	return &reply, nil
}

// truncate cuts on rune boundaries; profile text is routinely non-ASCII.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
