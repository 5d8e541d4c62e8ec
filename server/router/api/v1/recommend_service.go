package v1

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/artrec/hunterd/engine"
	"github.com/artrec/hunterd/store"
)

// UpsertProfileRequest carries the structured onboarding profile.
type UpsertProfileRequest struct {
	TasteGenre        string   `json:"taste_genre"`
	PastFavoriteWork  []string `json:"past_favorite_work"`
	CurrentObsession  []string `json:"current_obsession"`
	StateOfMind       string   `json:"state_of_mind"`
	FutureAspirations string   `json:"future_aspirations"`
	Complete          bool     `json:"complete"`
}

// ProfileResponse mirrors the stored profile.
type ProfileResponse struct {
	UUID              string   `json:"uuid"`
	TasteGenre        string   `json:"taste_genre"`
	PastFavoriteWork  []string `json:"past_favorite_work"`
	CurrentObsession  []string `json:"current_obsession"`
	StateOfMind       string   `json:"state_of_mind"`
	FutureAspirations string   `json:"future_aspirations"`
	Complete          bool     `json:"complete"`
}

// SwipeRequest records one swipe. ItemID may be a catalog item id or the raw
// source URL of the item.
type SwipeRequest struct {
	UUID      string `json:"uuid"`
	ItemID    string `json:"item_id"`
	Direction string `json:"direction"`
}

// CandidateResponse is one served candidate.
type CandidateResponse struct {
	ItemID      string            `json:"item_id"`
	Domain      string            `json:"domain"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Creator     string            `json:"creator"`
	ReleaseDate string            `json:"release_date"`
	SourceURL   string            `json:"source_url"`
	ImageURL    string            `json:"image_url"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Score       float32           `json:"score"`
}

// CandidatePageResponse is one serving page.
type CandidatePageResponse struct {
	State string              `json:"state"`
	Items []CandidateResponse `json:"items"`
}

// GenerationStatusResponse reports candidate generation progress.
type GenerationStatusResponse struct {
	UUID        string `json:"uuid"`
	State       string `json:"state"`
	StoredCount int32  `json:"stored_count"`
}

func userUUID(c echo.Context) (string, error) {
	raw := c.Param("uuid")
	if _, err := uuid.Parse(raw); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid user uuid").SetInternal(err)
	}
	return raw, nil
}

// UpsertProfile persists the onboarding profile for a user.
func (s *APIV1Service) UpsertProfile(c echo.Context) error {
	id, err := userUUID(c)
	if err != nil {
		return err
	}
	req := &UpsertProfileRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed profile request").SetInternal(err)
	}

	stored, err := s.Store.UpsertUserProfile(c.Request().Context(), &store.UserProfile{
		UUID:              id,
		TasteGenre:        req.TasteGenre,
		PastFavoriteWork:  req.PastFavoriteWork,
		CurrentObsession:  req.CurrentObsession,
		StateOfMind:       req.StateOfMind,
		FutureAspirations: req.FutureAspirations,
		Complete:          req.Complete,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store profile").SetInternal(err)
	}
	return c.JSON(http.StatusOK, profileResponse(stored))
}

// GetProfile returns the stored onboarding profile.
func (s *APIV1Service) GetProfile(c echo.Context) error {
	id, err := userUUID(c)
	if err != nil {
		return err
	}
	stored, err := s.Store.GetUserProfile(c.Request().Context(), &store.FindUserProfile{UUID: id})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load profile").SetInternal(err)
	}
	if stored == nil {
		return echo.NewHTTPError(http.StatusNotFound, "profile not found")
	}
	return c.JSON(http.StatusOK, profileResponse(stored))
}

func profileResponse(p *store.UserProfile) *ProfileResponse {
	return &ProfileResponse{
		UUID:              p.UUID,
		TasteGenre:        p.TasteGenre,
		PastFavoriteWork:  p.PastFavoriteWork,
		CurrentObsession:  p.CurrentObsession,
		StateOfMind:       p.StateOfMind,
		FutureAspirations: p.FutureAspirations,
		Complete:          p.Complete,
	}
}

// GenerateCandidates triggers the full generation pipeline for a user.
func (s *APIV1Service) GenerateCandidates(c echo.Context) error {
	id, err := userUUID(c)
	if err != nil {
		return err
	}
	report, err := s.Engine.GenerateCandidates(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, engine.ErrProfileIncomplete) {
			return echo.NewHTTPError(http.StatusConflict, "user profile is not complete").SetInternal(err)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "candidate generation failed").SetInternal(err)
	}
	return c.JSON(http.StatusOK, report)
}

// ListCandidates serves the next batch of candidates for a user.
func (s *APIV1Service) ListCandidates(c echo.Context) error {
	id, err := userUUID(c)
	if err != nil {
		return err
	}
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid limit")
		}
	}

	batch, err := s.Engine.RankedCandidates(c.Request().Context(), id, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to rank candidates").SetInternal(err)
	}

	resp := &CandidatePageResponse{
		State: string(batch.State),
		Items: make([]CandidateResponse, 0, len(batch.Items)),
	}
	for _, ranked := range batch.Items {
		resp.Items = append(resp.Items, CandidateResponse{
			ItemID:      ranked.Item.ItemID,
			Domain:      string(ranked.Item.Domain),
			Title:       ranked.Item.Title,
			Description: ranked.Item.Description,
			Creator:     ranked.Item.Creator,
			ReleaseDate: ranked.Item.ReleaseDate,
			SourceURL:   ranked.Item.SourceURL,
			ImageURL:    ranked.Item.ImageURL,
			Metadata:    ranked.Item.Metadata,
			Score:       ranked.Score,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// GetGenerationStatus reports candidate generation progress for a user.
func (s *APIV1Service) GetGenerationStatus(c echo.Context) error {
	id, err := userUUID(c)
	if err != nil {
		return err
	}
	status, err := s.Engine.GenerationStatus(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load generation status").SetInternal(err)
	}
	return c.JSON(http.StatusOK, &GenerationStatusResponse{
		UUID:        status.UUID,
		State:       string(status.State),
		StoredCount: status.StoredCount,
	})
}

// RecordSwipe applies one swipe to the feedback ledger.
func (s *APIV1Service) RecordSwipe(c echo.Context) error {
	req := &SwipeRequest{}
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed swipe request").SetInternal(err)
	}
	if _, err := uuid.Parse(req.UUID); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user uuid").SetInternal(err)
	}
	if req.ItemID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "item_id is required")
	}
	var liked bool
	switch req.Direction {
	case "right":
		liked = true
	case "left":
		liked = false
	default:
		return echo.NewHTTPError(http.StatusBadRequest, `direction must be "left" or "right"`)
	}

	ack, err := s.Engine.RecordFeedback(c.Request().Context(), req.UUID, req.ItemID, liked)
	if err != nil {
		if errors.Is(err, store.ErrInvalidTransition) {
			return echo.NewHTTPError(http.StatusConflict, "item was already swiped").SetInternal(err)
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to record swipe").SetInternal(err)
	}
	return c.JSON(http.StatusOK, ack)
}
