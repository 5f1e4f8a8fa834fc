package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jonathan/teamverse/internal/fetch"
	"github.com/jonathan/teamverse/internal/rendering"
	"github.com/jonathan/teamverse/internal/types"
	"github.com/jonathan/teamverse/internal/validation"
)

// QuoteRequest is the optional quote of a render request.
type QuoteRequest struct {
	Text        string `json:"text" validate:"required"`
	Name        string `json:"name"`
	Title       string `json:"title"`
	HeadshotURL string `json:"headshot_url,omitempty" validate:"omitempty,abshttp"`
}

// RenderSocialRequest represents the request body for /render-social.
// The text fields must be present but may be empty.
type RenderSocialRequest struct {
	HeadlinePrefix    *string       `json:"headline_prefix" validate:"required"`
	HeadlineHighlight *string       `json:"headline_highlight" validate:"required"`
	Subtext           *string       `json:"subtext" validate:"required"`
	Audience          string        `json:"audience" validate:"required"`
	Badge             string        `json:"badge,omitempty"`
	Quote             *QuoteRequest `json:"quote,omitempty"`
	LogoURL           string        `json:"logo_url,omitempty" validate:"omitempty,abshttp"`
}

// RenderSocialResponse represents the response for /render-social
type RenderSocialResponse struct {
	Success   bool   `json:"success"`
	ImagePath string `json:"image_path"`
	Message   string `json:"message"`
}

// ValidateImageRequest represents the request body for /validate-image
type ValidateImageRequest struct {
	ImagePath      string `json:"image_path" validate:"required"`
	ExpectedWidth  int    `json:"expected_width" validate:"gt=0"`
	ExpectedHeight int    `json:"expected_height" validate:"gt=0"`
	CheckEdges     bool   `json:"check_edges"`
	EdgeTolerance  int    `json:"edge_tolerance" validate:"gte=0"`
}

// ParseSourceRequest represents the request body for /parse-source
type ParseSourceRequest struct {
	URL string `json:"url" validate:"required,abshttp"`
}

// ParseSourceResponse represents the response for /parse-source
type ParseSourceResponse struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Markdown string `json:"markdown"`
	URL      string `json:"url"`
}

// decodeRequest decodes the JSON body into req and runs its validate tags.
// Malformed JSON is reported as 400, constraint failures as 422.
func (s *Server) decodeRequest(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	if err := types.Validator().Struct(req); err != nil {
		s.errorResponse(w, http.StatusUnprocessableEntity, strings.Join(types.FieldErrors(err), "; "))
		return false
	}
	return true
}

// toSocialPost builds the content record, rejecting unknown audiences.
func (req *RenderSocialRequest) toSocialPost() (types.SocialPost, error) {
	audience, err := types.ParseAudience(req.Audience)
	if err != nil {
		return types.SocialPost{}, &ErrValidation{Field: "audience", Message: err.Error()}
	}

	post := types.SocialPost{
		HeadlinePrefix:    *req.HeadlinePrefix,
		HeadlineHighlight: *req.HeadlineHighlight,
		Subtext:           *req.Subtext,
		Audience:          audience,
		Badge:             req.Badge,
		LogoURL:           req.LogoURL,
	}
	if req.Quote != nil {
		post.Quote = types.NewQuoteBlock(req.Quote.Text, req.Quote.Name, req.Quote.Title, req.Quote.HeadshotURL)
	}
	post.ApplyDefaults()
	return post, nil
}

// handleRenderSocial renders a social image into the output directory
func (s *Server) handleRenderSocial(w http.ResponseWriter, r *http.Request) {
	var req RenderSocialRequest
	if !s.decodeRequest(w, r, &req) {
		return
	}

	post, err := req.toSocialPost()
	if err != nil {
		s.errorFromErr(w, err)
		return
	}

	ctx := r.Context()
	if s.renderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.renderTimeout)
		defer cancel()
	}

	outputPath := filepath.Join(s.outputDir, fmt.Sprintf("social-%s.png", uuid.NewString()))
	path, err := s.renderer.Render(ctx, post, outputPath, s.width, s.height)
	if err != nil {
		log.Error().Err(err).Str("audience", string(post.Audience)).Msg("render failed")
		s.errorResponse(w, renderStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, RenderSocialResponse{
		Success:   true,
		ImagePath: path,
		Message:   "Image rendered successfully",
	})
}

// renderStatus maps renderer errors to 500; a post rejected by its own
// validation is still a client error.
func renderStatus(err error) int {
	var (
		unavailable *rendering.UnavailableError
		renderErr   *rendering.RenderError
		invalid     *rendering.InvalidOutputError
		templateErr *rendering.TemplateError
	)
	if errors.As(err, &unavailable) || errors.As(err, &renderErr) ||
		errors.As(err, &invalid) || errors.As(err, &templateErr) {
		return http.StatusInternalServerError
	}
	return HTTPStatus(err)
}

// handleValidateImage validates an image on the server's filesystem
func (s *Server) handleValidateImage(w http.ResponseWriter, r *http.Request) {
	req := ValidateImageRequest{
		ExpectedWidth:  validation.DefaultWidth,
		ExpectedHeight: validation.DefaultHeight,
		CheckEdges:     true,
		EdgeTolerance:  validation.DefaultTolerance,
	}
	if !s.decodeRequest(w, r, &req) {
		return
	}

	opts := validation.DefaultOptions()
	opts.Width = req.ExpectedWidth
	opts.Height = req.ExpectedHeight
	opts.CheckEdges = req.CheckEdges
	opts.Tolerance = req.EdgeTolerance

	result := validation.ValidateImage(req.ImagePath, opts)
	s.metrics.ObserveValidation(result)

	s.jsonResponse(w, http.StatusOK, result)
}

// handleParseSource fetches a web page and returns its normalized content
func (s *Server) handleParseSource(w http.ResponseWriter, r *http.Request) {
	var req ParseSourceRequest
	if !s.decodeRequest(w, r, &req) {
		s.metrics.IncParse("invalid")
		return
	}

	doc, err := s.parser.Parse(r.Context(), req.URL)
	if err != nil {
		var fetchErr *fetch.Error
		status := "error"
		if errors.As(err, &fetchErr) {
			status = "fetch_error"
		}
		s.metrics.IncParse(status)
		log.Warn().Err(err).Str("url", req.URL).Msg("parse failed")
		s.errorFromErr(w, err)
		return
	}

	s.metrics.IncParse("ok")
	s.jsonResponse(w, http.StatusOK, ParseSourceResponse{
		Title:    doc.Title,
		Content:  doc.Content,
		Markdown: doc.Markdown,
		URL:      doc.URL,
	})
}
