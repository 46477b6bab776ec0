package handlers

import (
	"errors"
	"net/http"

	"github.com/davrot/questionnaire-backend/internal/questionnaire/repository"
	"github.com/davrot/questionnaire-backend/internal/questionnaire/service"
	"github.com/davrot/questionnaire-backend/internal/storage"
	"github.com/davrot/questionnaire-backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuestionnaireHandler maps the HTTP surface 1:1 onto the aggregate store
// accessor. Every response carries the {status, message} envelope.
type QuestionnaireHandler struct {
	svc    *service.Service
	images storage.ImageStore
}

func NewQuestionnaireHandler(svc *service.Service, images storage.ImageStore) *QuestionnaireHandler {
	return &QuestionnaireHandler{svc: svc, images: images}
}

// Register wires all questionnaire routes onto the engine.
func (h *QuestionnaireHandler) Register(r *gin.Engine) {
	r.GET("/", h.GetQuestionnaire)
	r.POST("/register", h.RegisterUser)
	r.POST("/login", h.Login)
	r.POST("/rate/:id", h.Rate)
	r.POST("/upload-image", h.UploadImage)
	r.POST("/add-question", h.AddQuestion)
	r.POST("/add-answer/:id", h.AddAnswer)
	r.POST("/active-questionnaire", h.ActivateQuestionnaire)
	r.POST("/upload-link", h.UploadLink)
}

func internalError(c *gin.Context, err error) {
	logger.Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, gin.H{
		"message": "Internal server error",
		"error":   err.Error(),
		"status":  false,
	})
}

// GetQuestionnaire returns the singleton aggregate. An empty store answers
// 500, matching the behavior clients already depend on.
func (h *QuestionnaireHandler) GetQuestionnaire(c *gin.Context) {
	q, err := h.svc.Aggregate(c.Request.Context())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusInternalServerError, gin.H{
				"message": "No questionnaire available",
				"status":  false,
			})
			return
		}
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "questionnaire is available",
		"questionnaire": q,
		"status":        true,
	})
}

// saveUpload validates and stores a multipart image, returning the stored
// path. Writes the error response itself and returns ok=false on failure.
func (h *QuestionnaireHandler) saveUpload(c *gin.Context) (path string, ok bool) {
	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Image file is required", "status": false})
		return "", false
	}
	contentType := fh.Header.Get("Content-Type")
	if !storage.AllowedImage(fh.Filename, contentType) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Only JPEG, JPG, and PNG files are allowed!", "status": false})
		return "", false
	}
	f, err := fh.Open()
	if err != nil {
		internalError(c, err)
		return "", false
	}
	defer f.Close()
	path, err = h.images.Save(c.Request.Context(), fh.Filename, f, fh.Size, contentType)
	if err != nil {
		internalError(c, err)
		return "", false
	}
	return path, true
}

// RegisterUser creates a user from multipart form fields plus an optional image.
func (h *QuestionnaireHandler) RegisterUser(c *gin.Context) {
	name := c.PostForm("name")
	email := c.PostForm("email")
	password := c.PostForm("password")
	if name == "" || email == "" || password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "name, email and password are required", "status": false})
		return
	}

	var imagePath *string
	if _, err := c.FormFile("image"); err == nil {
		p, ok := h.saveUpload(c)
		if !ok {
			return
		}
		imagePath = &p
	}

	u, err := h.svc.Register(c.Request.Context(), name, email, password, imagePath)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateEmail) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "User already exists", "status": false})
			return
		}
		internalError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "user created successfully",
		"data":    u,
		"status":  true,
	})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *QuestionnaireHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "email and password are required", "status": false})
		return
	}
	u, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found", "status": false})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials", "status": false})
		default:
			internalError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    u,
		"status":  true,
	})
}

type rateRequest struct {
	Rating *float64 `json:"rating" binding:"required"`
}

func (h *QuestionnaireHandler) Rate(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found", "status": false})
		return
	}
	var req rateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "rating is required", "status": false})
		return
	}
	u, err := h.svc.Rate(c.Request.Context(), id, *req.Rating)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found", "status": false})
			return
		}
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Rating added successfully",
		"data":    u,
		"status":  true,
	})
}

// UploadImage replaces the questionnaire image; the previous stored file is
// removed once the new upload is persisted.
func (h *QuestionnaireHandler) UploadImage(c *gin.Context) {
	path, ok := h.saveUpload(c)
	if !ok {
		return
	}
	q, err := h.svc.ReplaceImage(c.Request.Context(), path)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Image uploaded successfully",
		"data":    q,
		"status":  true,
	})
}

type questionRequest struct {
	Question string `json:"question"`
}

func (h *QuestionnaireHandler) AddQuestion(c *gin.Context) {
	var req questionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body", "status": false})
		return
	}
	q, err := h.svc.SetQuestion(c.Request.Context(), req.Question)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Question added successfully",
		"questionnaire": q,
		"status":        true,
	})
}

type answerRequest struct {
	Answer string `json:"answer"`
}

func (h *QuestionnaireHandler) AddAnswer(c *gin.Context) {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "User not found", "status": false})
		return
	}
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Answer == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Answer is required", "status": false})
		return
	}
	q, err := h.svc.SetAnswer(c.Request.Context(), id, req.Answer)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found", "status": false})
			return
		}
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Answer added successfully",
		"data":    q,
		"status":  true,
	})
}

type activateRequest struct {
	Status *bool `json:"status" binding:"required"`
}

func (h *QuestionnaireHandler) ActivateQuestionnaire(c *gin.Context) {
	var req activateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "status is required", "status": false})
		return
	}
	q, err := h.svc.SetActive(c.Request.Context(), *req.Status)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Questionnaire activated successfully",
		"questionnaire": q,
		"status":        true,
	})
}

type linkRequest struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

func (h *QuestionnaireHandler) UploadLink(c *gin.Context) {
	var req linkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body", "status": false})
		return
	}
	q, err := h.svc.AddLink(c.Request.Context(), req.Title, req.Value)
	if err != nil {
		internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Link added successfully",
		"questionnaire": q,
		"status":        true,
	})
}
