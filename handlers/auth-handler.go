package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"rucja-api/config"
	"rucja-api/middleware"
	"rucja-api/models"
	"rucja-api/store"
	"rucja-api/utils"

	"golang.org/x/crypto/bcrypt"
)

var (
	generateFromPassword   = bcrypt.GenerateFromPassword
	compareHashAndPassword = bcrypt.CompareHashAndPassword
	generateAccessToken    = utils.GenerateAccessToken
)

// bcryptCost matches the legacy server's hashing cost factor.
const bcryptCost = 10

type AuthHandler struct {
	cfg   config.Config
	store *store.Store
}

func NewAuthHandler(cfg config.Config, st *store.Store) *AuthHandler {
	return &AuthHandler{cfg: cfg, store: st}
}

type registerRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	Email     string `json:"email"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Avatar    string `json:"avatar"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string      `json:"accessToken"`
	User        models.User `json:"user"`
}

// RegisterHandler creates a user with the next integer id and a bcrypt
// password hash. The response body is the stored record verbatim, hash
// included; that exposure is a documented compatibility quirk, not an
// oversight to fix silently.
func (h *AuthHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) error {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return middleware.NewAppError(http.StatusBadRequest, "Bad request, requires username, password & email.", err)
	}

	if req.Username == "" || req.Password == "" || req.Email == "" {
		return middleware.NewAppError(http.StatusBadRequest, "Bad request, requires username, password & email.", nil)
	}

	hashedPassword, err := generateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		return middleware.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}

	user := models.User{
		Username:  req.Username,
		Password:  string(hashedPassword),
		Email:     req.Email,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Avatar:    req.Avatar,
		CreatedAt: time.Now().UnixMilli(),
	}

	stored, err := h.store.InsertUser(user)
	if err != nil {
		return middleware.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}

	return writeJSON(w, http.StatusCreated, stored)
}

// LoginHandler checks the supplied credentials against the store and issues
// an access token. Two legacy behaviors are preserved on purpose: an
// unknown username is named in the 400 response, and a password mismatch
// answers 200 with a plain-text message instead of an error status.
func (h *AuthHandler) LoginHandler(w http.ResponseWriter, r *http.Request) error {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return middleware.NewAppError(http.StatusBadRequest, "Bad request, requires username & password both.", err)
	}

	if req.Username == "" || req.Password == "" {
		return middleware.NewAppError(http.StatusBadRequest, "Bad request, requires username & password both.", nil)
	}

	user, found, err := h.store.FindUserByUsername(req.Username)
	if err != nil {
		return middleware.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}
	if !found {
		return middleware.NewAppError(http.StatusBadRequest, fmt.Sprintf("Cannot find user: %s", req.Username), nil)
	}

	if err := compareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Not allowed, name/password mismatch."))
		return nil
	}

	accessToken, err := generateAccessToken(user, h.cfg.Auth.AccessTokenTTL, h.cfg.Auth.AccessTokenSecret)
	if err != nil {
		return middleware.NewAppError(http.StatusInternalServerError, "Could not generate token", err)
	}

	return writeJSON(w, http.StatusOK, loginResponse{AccessToken: accessToken, User: user})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(payload)
}
