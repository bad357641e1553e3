package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/application"
	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/domain"
	"github.com/letsdoitintime/tg-stats-bot-sub000/internal/infrastructure/presentation"
)

// LeaderboardProvider abstracts the leaderboard path so the handler works
// with either the plain aggregator or its cached decorator.
type LeaderboardProvider interface {
	GetLeaderboard(ctx context.Context, q application.LeaderboardQuery) ([]domain.LeaderboardEntry, error)
}

// EngagementHandler handles engagement scoring HTTP requests.
type EngagementHandler struct {
	engagement  *application.EngagementService
	leaderboard LeaderboardProvider
	store       domain.StatsStore
}

// NewEngagementHandler creates a new EngagementHandler.
func NewEngagementHandler(engagement *application.EngagementService, leaderboard LeaderboardProvider, store domain.StatsStore) *EngagementHandler {
	return &EngagementHandler{
		engagement:  engagement,
		leaderboard: leaderboard,
		store:       store,
	}
}

// RegisterRoutes registers the engagement routes on the given group.
func (h *EngagementHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/chats/:chat_id/users/:user_id/engagement", h.GetUserScore)
	g.GET("/chats/:chat_id/users/:user_id/engagement/metrics", h.GetUserMetrics)
	g.GET("/chats/:chat_id/leaderboard", h.GetLeaderboard)
}

// ScoreResponse is the API representation of an engagement score.
type ScoreResponse struct {
	UserID           int64    `json:"user_id"`
	TotalScore       float64  `json:"total_score"`
	ActivityScore    float64  `json:"activity_score"`
	ConsistencyScore float64  `json:"consistency_score"`
	QualityScore     float64  `json:"quality_score"`
	InteractionScore float64  `json:"interaction_score"`
	Percentile       *float64 `json:"percentile,omitempty"`
}

// MetricsResponse is the API representation of raw engagement metrics.
type MetricsResponse struct {
	MessageCount      int64   `json:"message_count"`
	AvgMessageLength  float64 `json:"avg_message_length"`
	DaysActive        int     `json:"days_active"`
	TotalDays         int     `json:"total_days"`
	URLCount          int64   `json:"url_count"`
	MediaCount        int64   `json:"media_count"`
	ReactionsGiven    int64   `json:"reactions_given"`
	ReactionsReceived int64   `json:"reactions_received"`
	ReplyCount        int64   `json:"reply_count"`
	RepliesReceived   int64   `json:"replies_received"`
}

// UserResponse is the API representation of a user identity.
type UserResponse struct {
	UserID      int64  `json:"user_id"`
	Username    string `json:"username,omitempty"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	DisplayName string `json:"display_name"`
}

// LeaderboardEntryResponse is one ranked leaderboard row.
type LeaderboardEntryResponse struct {
	Rank    int              `json:"rank"`
	Score   ScoreResponse    `json:"score"`
	User    UserResponse     `json:"user"`
	Metrics *MetricsResponse `json:"metrics,omitempty"`
}

// LeaderboardResponse is the API response for a chat leaderboard.
type LeaderboardResponse struct {
	ChatID      int64                      `json:"chat_id"`
	Days        int                        `json:"days"`
	MinMessages int                        `json:"min_messages"`
	Entries     []LeaderboardEntryResponse `json:"entries"`
}

// GetUserScore handles GET /api/v1/chats/:chat_id/users/:user_id/engagement
// query params: days, thread_id, include_metrics, format=json|text
func (h *EngagementHandler) GetUserScore(c echo.Context) error {
	q, err := h.userQuery(c)
	if err != nil {
		return err
	}

	score, err := h.engagement.CalculateScore(c.Request().Context(), q)
	if err != nil {
		return mapDomainError(err)
	}

	if c.QueryParam("format") == "text" {
		identity, err := h.identityFor(c, score.UserID)
		if err != nil {
			return mapDomainError(err)
		}

		var metrics *domain.EngagementMetrics
		if parseBool(c.QueryParam("include_metrics")) {
			m, err := h.engagement.GetMetrics(c.Request().Context(), q)
			if err != nil {
				return mapDomainError(err)
			}
			metrics = &m
		}

		days := h.engagement.ResolveWindow(q.Days)
		return c.String(http.StatusOK, presentation.FormatScoreCard(identity, score, metrics, days))
	}

	return c.JSON(http.StatusOK, toScoreResponse(score))
}

// GetUserMetrics handles GET /api/v1/chats/:chat_id/users/:user_id/engagement/metrics
func (h *EngagementHandler) GetUserMetrics(c echo.Context) error {
	q, err := h.userQuery(c)
	if err != nil {
		return err
	}

	metrics, err := h.engagement.GetMetrics(c.Request().Context(), q)
	if err != nil {
		return mapDomainError(err)
	}

	return c.JSON(http.StatusOK, toMetricsResponse(metrics))
}

// GetLeaderboard handles GET /api/v1/chats/:chat_id/leaderboard
// query params: days, min_messages, limit, thread_id, include_metrics,
// format=json|text
func (h *EngagementHandler) GetLeaderboard(c echo.Context) error {
	chatID, err := h.chatParam(c)
	if err != nil {
		return err
	}

	// resolve defaults up front so equivalent requests share one cache
	// entry and the response reports the window actually applied
	q := application.LeaderboardQuery{
		ChatID:         chatID,
		Days:           h.engagement.ResolveWindow(parseIntParam(c, "days")),
		MinMessages:    h.engagement.ResolveMinMessages(parseIntParam(c, "min_messages")),
		Limit:          parseIntParam(c, "limit"),
		ThreadID:       parseThreadParam(c),
		IncludeMetrics: parseBool(c.QueryParam("include_metrics")),
	}

	entries, err := h.leaderboard.GetLeaderboard(c.Request().Context(), q)
	if err != nil {
		return mapDomainError(err)
	}

	if c.QueryParam("format") == "text" {
		return c.String(http.StatusOK, presentation.FormatLeaderboard(entries, q.Days))
	}

	resp := LeaderboardResponse{
		ChatID:      chatID,
		Days:        q.Days,
		MinMessages: q.MinMessages,
		Entries:     make([]LeaderboardEntryResponse, 0, len(entries)),
	}
	for i, entry := range entries {
		row := LeaderboardEntryResponse{
			Rank:  i + 1,
			Score: toScoreResponse(entry.Score),
			User: UserResponse{
				UserID:      entry.User.UserID.Int64(),
				Username:    entry.User.Username,
				FirstName:   entry.User.FirstName,
				LastName:    entry.User.LastName,
				DisplayName: entry.User.DisplayName(),
			},
		}
		if entry.Metrics != nil {
			m := toMetricsResponse(*entry.Metrics)
			row.Metrics = &m
		}
		resp.Entries = append(resp.Entries, row)
	}

	return c.JSON(http.StatusOK, resp)
}

// userQuery parses the path/query params shared by the single-user routes.
func (h *EngagementHandler) userQuery(c echo.Context) (application.EngagementQuery, error) {
	chatID, err := h.chatParam(c)
	if err != nil {
		return application.EngagementQuery{}, err
	}

	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		return application.EngagementQuery{}, echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	return application.EngagementQuery{
		ChatID:   chatID,
		UserID:   userID,
		Days:     parseIntParam(c, "days"),
		ThreadID: parseThreadParam(c),
	}, nil
}

// chatParam parses the chat id and enforces token chat scoping.
func (h *EngagementHandler) chatParam(c echo.Context) (int64, error) {
	chatID, err := strconv.ParseInt(c.Param("chat_id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid chat id")
	}

	if claims := GetClaims(c); claims != nil && !claims.CanAccessChat(chatID) {
		return 0, echo.NewHTTPError(http.StatusForbidden, "token not valid for this chat")
	}

	return chatID, nil
}

func (h *EngagementHandler) identityFor(c echo.Context, user domain.UserID) (domain.UserIdentity, error) {
	identity, err := h.store.FindUserIdentity(c.Request().Context(), user)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.UserIdentity{UserID: user}, nil
	}
	return identity, err
}

func toScoreResponse(s domain.EngagementScore) ScoreResponse {
	return ScoreResponse{
		UserID:           s.UserID.Int64(),
		TotalScore:       s.TotalScore,
		ActivityScore:    s.ActivityScore,
		ConsistencyScore: s.ConsistencyScore,
		QualityScore:     s.QualityScore,
		InteractionScore: s.InteractionScore,
		Percentile:       s.Percentile,
	}
}

func toMetricsResponse(m domain.EngagementMetrics) MetricsResponse {
	return MetricsResponse{
		MessageCount:      m.MessageCount,
		AvgMessageLength:  m.AvgMessageLength,
		DaysActive:        m.DaysActive,
		TotalDays:         m.TotalDays,
		URLCount:          m.URLCount,
		MediaCount:        m.MediaCount,
		ReactionsGiven:    m.ReactionsGiven,
		ReactionsReceived: m.ReactionsReceived,
		ReplyCount:        m.ReplyCount,
		RepliesReceived:   m.RepliesReceived,
	}
}

func parseIntParam(c echo.Context, name string) int {
	if v := c.QueryParam(name); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return 0
}

func parseThreadParam(c echo.Context) *int64 {
	if v := c.QueryParam("thread_id"); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return &parsed
		}
	}
	return nil
}

func parseBool(v string) bool {
	return v == "true" || v == "1"
}

// mapDomainError maps domain/application errors to HTTP errors.
func mapDomainError(err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrWindowNotPositive),
		errors.Is(err, domain.ErrWindowTooLarge):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
}
