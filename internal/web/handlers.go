package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Rodhackgang/KaboreTech-sub000/internal/entitlement"
	"github.com/Rodhackgang/KaboreTech-sub000/internal/models"
	"github.com/Rodhackgang/KaboreTech-sub000/internal/repository"
	"github.com/Rodhackgang/KaboreTech-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	userService  service.UserService
	videoService service.VideoService
	log          *zap.Logger
}

func NewHandlers(userService service.UserService, videoService service.VideoService, log *zap.Logger) *Handlers {
	return &Handlers{
		userService:  userService,
		videoService: videoService,
		log:          log,
	}
}

func (h *Handlers) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Phone    string `json:"phone" binding:"required"`
		Password string `json:"password" binding:"required,min=6"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Champs requis : name, phone, password (6 caractères min)"})
		return
	}

	_, err := h.userService.Register(c.Request.Context(), req.Name, req.Phone, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicatePhone) {
			c.JSON(http.StatusConflict, gin.H{"error": "Ce numéro est déjà inscrit"})
			return
		}
		h.log.Error("registration failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Échec de l'inscription"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Compte créé. Vos accès VIP seront activés après validation du paiement.",
	})
}

func (h *Handlers) Login(c *gin.Context) {
	var req struct {
		Phone    string `json:"phone" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Champs requis : phone, password"})
		return
	}

	user, err := h.userService.Login(c.Request.Context(), req.Phone, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		case errors.Is(err, service.ErrInvalidCredentials):
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Mot de passe incorrect"})
		default:
			h.log.Error("login failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Échec de la connexion"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":      user,
		"vipStatus": user.VIP,
	})
}

func (h *Handlers) SubmitPayment(c *gin.Context) {
	var req struct {
		Phone    string `json:"phone" binding:"required"`
		NumDepot string `json:"numDepot" binding:"required"`
		Domain   string `json:"domaine" binding:"required"`
		Part     string `json:"part" binding:"required"`
		Mode     string `json:"mode" binding:"required"`
		Price    string `json:"price" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Champs requis : phone, numDepot, domaine, part, mode, price"})
		return
	}

	payment := &models.Payment{
		Phone:    req.Phone,
		NumDepot: req.NumDepot,
		Domain:   req.Domain,
		Part:     req.Part,
		Mode:     req.Mode,
		Price:    req.Price,
	}

	alreadyGranted, err := h.userService.SubmitPayment(c.Request.Context(), payment)
	if err != nil {
		switch {
		case errors.Is(err, entitlement.ErrInvalidKey):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Formation inconnue"})
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		default:
			h.log.Error("payment submission failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Échec de l'envoi du paiement"})
		}
		return
	}

	if alreadyGranted {
		c.JSON(http.StatusOK, gin.H{
			"message": "Cet accès VIP est déjà activé",
			"isPaid":  true,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Paiement soumis, votre accès sera activé après vérification",
		"isPaid":  false,
	})
}

func (h *Handlers) VIPStatus(c *gin.Context) {
	phone := c.Query("phone")
	if phone == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Paramètre requis : phone"})
		return
	}

	domains, err := h.userService.VIPDomains(c.Request.Context(), phone)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
			return
		}
		h.log.Error("vip status lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Échec de la requête"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"vipDomains": domains})
}

func (h *Handlers) ForgotPassword(c *gin.Context) {
	var req struct {
		Phone string `json:"phone" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Champ requis : phone"})
		return
	}

	if err := h.userService.RequestPasswordReset(c.Request.Context(), req.Phone); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
			return
		}
		h.log.Error("password reset request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Échec de l'envoi du code"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Code de vérification envoyé sur WhatsApp"})
}

func (h *Handlers) VerifyOTP(c *gin.Context) {
	var req struct {
		Phone string `json:"phone" binding:"required"`
		OTP   string `json:"otp" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Champs requis : phone, otp"})
		return
	}

	if err := h.userService.VerifyOTP(c.Request.Context(), req.Phone, req.OTP); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		case errors.Is(err, service.ErrInvalidOTP):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Code invalide ou expiré"})
		default:
			h.log.Error("otp verification failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Échec de la vérification"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Code vérifié"})
}

func (h *Handlers) ResetPassword(c *gin.Context) {
	var req struct {
		Phone       string `json:"phone" binding:"required"`
		OTP         string `json:"otp" binding:"required"`
		NewPassword string `json:"newPassword" binding:"required,min=6"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Champs requis : phone, otp, newPassword (6 caractères min)"})
		return
	}

	if err := h.userService.ResetPassword(c.Request.Context(), req.Phone, req.OTP, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Utilisateur introuvable"})
		case errors.Is(err, service.ErrInvalidOTP):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Code invalide ou expiré"})
		default:
			h.log.Error("password reset failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Échec de la réinitialisation"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Mot de passe réinitialisé"})
}

// ListVideos returns the catalog. Paid videos keep their metadata and cover
// but lose the playback URL unless the caller's phone holds the matching
// entitlement.
func (h *Handlers) ListVideos(c *gin.Context) {
	videos, err := h.videoService.ListVideos(c.Request.Context(), c.Query("categorie"))
	if err != nil {
		h.log.Error("video listing failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Échec de la requête"})
		return
	}

	viewer := h.viewer(c)
	for i := range videos {
		if !h.videoService.CanWatch(viewer, &videos[i]) {
			videos[i].VideoURL = ""
		}
	}

	c.JSON(http.StatusOK, gin.H{"videos": videos})
}

func (h *Handlers) GetVideo(c *gin.Context) {
	video, err := h.videoService.GetVideo(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vidéo introuvable"})
			return
		}
		h.log.Error("video lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Échec de la requête"})
		return
	}

	if !h.videoService.CanWatch(h.viewer(c), video) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Accès VIP requis pour cette vidéo"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"video": video})
}

func (h *Handlers) CreateVideo(c *gin.Context) {
	isPaid, _ := strconv.ParseBool(c.PostForm("isPaid"))
	video := &models.Video{
		Title:       c.PostForm("title"),
		CategoryID:  c.PostForm("categorie"),
		Part:        c.PostForm("part"),
		IsPaid:      isPaid,
		Description: c.PostForm("description"),
	}

	if video.Title == "" || video.CategoryID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Champs requis : title, categorie"})
		return
	}

	file, err := openUpload(c, "video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Fichier vidéo manquant"})
		return
	}
	defer file.close()

	cover, err := openUpload(c, "image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image de couverture manquante"})
		return
	}
	defer cover.close()

	created, err := h.videoService.CreateVideo(c.Request.Context(), video, file.Upload, cover.Upload)
	if err != nil {
		h.log.Error("video creation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Échec de l'envoi de la vidéo"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"video": created})
}

func (h *Handlers) DeleteVideo(c *gin.Context) {
	if err := h.videoService.DeleteVideo(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Vidéo introuvable"})
			return
		}
		h.log.Error("video deletion failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Échec de la suppression"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Vidéo supprimée"})
}

// viewer resolves the optional phone query into a user; anonymous or
// unknown callers watch as nil (free videos only).
func (h *Handlers) viewer(c *gin.Context) *models.User {
	phone := c.Query("phone")
	if phone == "" {
		return nil
	}
	user, err := h.userService.GetByPhone(c.Request.Context(), phone)
	if err != nil {
		return nil
	}
	return user
}

type formUpload struct {
	service.Upload
	close func() error
}

func openUpload(c *gin.Context, field string) (*formUpload, error) {
	header, err := c.FormFile(field)
	if err != nil {
		return nil, err
	}
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	return &formUpload{
		Upload: service.Upload{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Body:        f,
		},
		close: f.Close,
	}, nil
}
