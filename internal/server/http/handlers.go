package httpserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/and161185/salesgate/internal/authctx"
	"github.com/and161185/salesgate/internal/model"
	"github.com/and161185/salesgate/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"
)

type handlers struct {
	auth  service.AuthService
	sales service.SaleService
	log   *zap.Logger
}

type registerReq struct {
	Email        string `json:"email"`
	Password     string `json:"password"`
	CustomerCode string `json:"customerCode"`
}

type credentialsReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userView struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	CustomerCode string `json:"customerCode"`
}

type loginResp struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
	User        userView  `json:"user"`
}

func (h *handlers) register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed body")
		return
	}
	id, err := h.auth.Register(r.Context(), req.Email, req.Password, req.CustomerCode)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, map[string]string{"id": id.String()})
}

func (h *handlers) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsReq
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed body")
		return
	}
	tok, u, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, loginResp{
		AccessToken: tok.AccessToken,
		TokenType:   "Bearer",
		ExpiresAt:   tok.ExpiresAt,
		User:        userView{ID: u.ID.String(), Email: u.Email, CustomerCode: u.CustomerCode},
	})
}

// logout sits outside the gate so that repeating it still succeeds.
func (h *handlers) logout(w http.ResponseWriter, r *http.Request) {
	raw, ok := authctx.BearerToken(r.Header.Get("Authorization"))
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing bearer token")
		return
	}
	if err := h.auth.Logout(r.Context(), raw); err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, messageBody{Message: "logged out successfully"})
}

func (h *handlers) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if err := h.auth.ForgotPassword(r.Context(), req.Email); err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, messageBody{Message: "if the account exists, a reset link has been sent"})
}

func (h *handlers) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if err := h.auth.ResetPassword(r.Context(), req.Token, req.Password); err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, messageBody{Message: "password has been reset"})
}

func (h *handlers) me(w http.ResponseWriter, r *http.Request) {
	c, ok := authctx.ClaimsFromCtx(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"id":           c.Subject,
		"email":        c.Email,
		"customerCode": c.CustomerCode,
		"roles":        c.Roles,
	})
}

type saleReq struct {
	AmountCents int64  `json:"amountCents"`
	CardNumber  string `json:"cardNumber"`
}

type saleView struct {
	ID           string    `json:"id"`
	CustomerCode string    `json:"customerCode"`
	AmountCents  int64     `json:"amountCents"`
	CardNumber   string    `json:"cardNumber"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toSaleView(s model.Sale) saleView {
	return saleView{
		ID:           s.ID.String(),
		CustomerCode: s.CustomerCode,
		AmountCents:  s.AmountCents,
		CardNumber:   maskCard(s.CardNumber),
		CreatedAt:    s.CreatedAt,
	}
}

// maskCard keeps the last four characters.
func maskCard(card string) string {
	if len(card) <= 4 {
		return strings.Repeat("*", len(card))
	}
	return strings.Repeat("*", len(card)-4) + card[len(card)-4:]
}

func customerCode(r *http.Request) (string, bool) {
	c, ok := authctx.ClaimsFromCtx(r.Context())
	if !ok || c.CustomerCode == "" {
		return "", false
	}
	return c.CustomerCode, true
}

func (h *handlers) createSale(w http.ResponseWriter, r *http.Request) {
	code, ok := customerCode(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	var req saleReq
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed body")
		return
	}
	s, err := h.sales.Create(r.Context(), code, req.AmountCents, req.CardNumber)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusCreated, toSaleView(*s))
}

func (h *handlers) getSale(w http.ResponseWriter, r *http.Request) {
	code, ok := customerCode(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	id, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "bad id")
		return
	}
	s, err := h.sales.Get(r.Context(), code, id)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	respondJSON(w, http.StatusOK, toSaleView(*s))
}

func (h *handlers) listSales(w http.ResponseWriter, r *http.Request) {
	code, ok := customerCode(r)
	if !ok {
		respondError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	list, err := h.sales.List(r.Context(), code)
	if err != nil {
		respondServiceError(w, h.log, err)
		return
	}
	out := make([]saleView, 0, len(list))
	for _, s := range list {
		out = append(out, toSaleView(s))
	}
	respondJSON(w, http.StatusOK, out)
}
