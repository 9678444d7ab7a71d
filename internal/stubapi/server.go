// Package stubapi is an in-memory stand-in for the growth archive backend.
// It serves the same REST contract the client consumes, for local runs and
// end-to-end tests.
package stubapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/growth-archive/internal/dto"
	"github.com/noah-isme/growth-archive/pkg/logger"
)

// Options configures the stub backend. Zero values pick defaults.
type Options struct {
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
	// AutoApprove approves every new item right after submission.
	AutoApprove bool
	// IgnoreStatusUpdates drops client-supplied status changes.
	IgnoreStatusUpdates bool
	Logger              *zap.Logger
	Now                 func() time.Time
}

// Server is the stub backend.
type Server struct {
	opts     Options
	store    *memoryStore
	validate *validator.Validate
	logger   *zap.Logger
	engine   *gin.Engine
}

type registerBody struct {
	Phone    string `json:"phone" validate:"required,len=11"`
	Password string `json:"password" validate:"required,min=6"`
	Name     string `json:"name"`
}

type loginBody struct {
	Phone    string `json:"phone" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type archiveCreateBody struct {
	Title        string `json:"title" validate:"required,min=1"`
	Category     string `json:"category" validate:"required"`
	Organization string `json:"organization"`
	Date         string `json:"date"`
	ImageURL     string `json:"image_url"`
	Description  string `json:"description"`
}

type archiveUpdateBody struct {
	dto.ArchiveUpdateRequest
}

// validationIssue mirrors one entry of a list-shaped detail.
type validationIssue struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// New builds the stub with its routes mounted under /api.
func New(opts Options) *Server {
	if opts.JWTSecret == "" {
		opts.JWTSecret = "dev_stub_secret"
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 7 * 24 * time.Hour
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{
		opts:     opts,
		store:    newMemoryStore(),
		validate: validator.New(),
		logger:   opts.Logger,
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware(opts.Logger))

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	auth := api.Group("/auth")
	auth.POST("/register", s.register)
	auth.POST("/login", s.login)
	auth.POST("/logout", s.requireUser(), s.logout)
	auth.GET("/me", s.requireUser(), s.me)
	auth.DELETE("/account", s.requireUser(), s.deleteAccount)

	users := api.Group("/users", s.requireUser())
	users.GET("/profile", s.getProfile)
	users.PUT("/profile", s.updateProfile)

	archives := api.Group("/archives", s.requireUser())
	archives.GET("", s.listArchives)
	archives.POST("", s.createArchive)
	archives.GET("/:id", s.getArchive)
	archives.PUT("/:id", s.updateArchive)
	archives.DELETE("/:id", s.deleteArchive)

	notifications := api.Group("/notifications", s.requireUser())
	notifications.GET("", s.listNotifications)
	notifications.PUT("/read-all", s.markAllRead)
	notifications.PUT("/:id/read", s.markRead)

	s.engine = r
	return s
}

// Handler exposes the routes for http.Server or httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func abortDetail(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, dto.ErrorPayload{Detail: detail})
}

// bind decodes and validates a JSON body, answering 422 with a list-shaped detail on failure.
func (s *Server) bind(c *gin.Context, body interface{}) bool {
	if err := c.ShouldBindJSON(body); err != nil {
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, dto.ErrorPayload{Detail: []validationIssue{{
			Loc: []string{"body"}, Msg: "JSON decode error", Type: "json_invalid",
		}}})
		return false
	}
	if err := s.validate.Struct(body); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			abortDetail(c, http.StatusUnprocessableEntity, err.Error())
			return false
		}
		issues := make([]validationIssue, 0, len(verrs))
		for _, fe := range verrs {
			field := strings.ToLower(fe.Field())
			issues = append(issues, validationIssue{
				Loc:  []string{"body", field},
				Msg:  issueMessage(field, fe),
				Type: fe.Tag(),
			})
		}
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, dto.ErrorPayload{Detail: issues})
		return false
	}
	return true
}

func issueMessage(field string, fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s: Field required", field)
	case "len":
		return fmt.Sprintf("%s: String should have %s characters", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s: String should have at least %s characters", field, fe.Param())
	default:
		return fmt.Sprintf("%s: invalid value", field)
	}
}

func (s *Server) notify(userID, kind, title, description string) {
	s.store.insertNotification(dto.NotificationRecord{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        kind,
		Title:       title,
		Description: description,
		CreatedAt:   timestamp(s.opts.Now()),
	})
}

func (s *Server) register(c *gin.Context) {
	var body registerBody
	if !s.bind(c, &body) {
		return
	}
	hash, err := s.hashPassword(body.Password)
	if err != nil {
		abortDetail(c, http.StatusBadRequest, "注册失败")
		return
	}
	name := body.Name
	if name == "" {
		name = "新用户"
	}
	acc := &account{
		profile: dto.UserProfileRecord{
			ID:    uuid.NewString(),
			Name:  name,
			Phone: body.Phone,
		},
		passwordHash: hash,
	}
	if !s.store.createUser(acc) {
		abortDetail(c, http.StatusBadRequest, "该手机号已注册")
		return
	}
	s.logger.Debug("stub user registered", zap.String("user_id", acc.profile.ID))
	c.JSON(http.StatusOK, dto.RegisterResponse{Message: "注册成功", UserID: acc.profile.ID})
}

func (s *Server) login(c *gin.Context) {
	var body loginBody
	if !s.bind(c, &body) {
		return
	}
	acc, ok := s.store.userByPhone(body.Phone)
	if !ok {
		abortDetail(c, http.StatusUnauthorized, "用户不存在")
		return
	}
	if !checkPassword(acc.passwordHash, body.Password) {
		abortDetail(c, http.StatusUnauthorized, "密码错误")
		return
	}
	token, err := s.issueToken(acc.profile.ID)
	if err != nil {
		abortDetail(c, http.StatusUnauthorized, "登录失败")
		return
	}
	c.JSON(http.StatusOK, dto.LoginResponse{AccessToken: token, TokenType: "bearer", UserID: acc.profile.ID})
}

func (s *Server) logout(c *gin.Context) {
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "注销成功"})
}

func (s *Server) me(c *gin.Context) {
	s.getProfile(c)
}

func (s *Server) deleteAccount(c *gin.Context) {
	s.store.deleteUser(currentUser(c))
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "账号已注销"})
}

func (s *Server) getProfile(c *gin.Context) {
	profile, ok := s.store.profile(currentUser(c))
	if !ok {
		abortDetail(c, http.StatusNotFound, "用户资料不存在")
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) updateProfile(c *gin.Context) {
	var body dto.UserProfileUpdateRequest
	if !s.bind(c, &body) {
		return
	}
	if body.Name == nil && body.StudentID == nil && body.Avatar == nil && body.Grade == nil &&
		body.Major == nil && body.University == nil {
		abortDetail(c, http.StatusBadRequest, "没有要更新的数据")
		return
	}
	profile, ok := s.store.updateProfile(currentUser(c), func(p *dto.UserProfileRecord) {
		assign(&p.Name, body.Name)
		assign(&p.StudentID, body.StudentID)
		assign(&p.Avatar, body.Avatar)
		assign(&p.Grade, body.Grade)
		assign(&p.Major, body.Major)
		assign(&p.University, body.University)
	})
	if !ok {
		abortDetail(c, http.StatusBadRequest, "更新失败")
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (s *Server) listArchives(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.listArchives(currentUser(c), c.Query("category")))
}

func (s *Server) getArchive(c *gin.Context) {
	rec, ok := s.store.archive(currentUser(c), c.Param("id"))
	if !ok {
		abortDetail(c, http.StatusNotFound, "档案不存在")
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) createArchive(c *gin.Context) {
	var body archiveCreateBody
	if !s.bind(c, &body) {
		return
	}
	userID := currentUser(c)
	now := s.opts.Now()
	rec := dto.ArchiveRecord{
		ID:           uuid.NewString(),
		UserID:       userID,
		Title:        body.Title,
		Category:     body.Category,
		Organization: body.Organization,
		Date:         body.Date,
		Status:       "pending",
		ImageURL:     body.ImageURL,
		Description:  body.Description,
		CreatedAt:    timestamp(now),
		UpdatedAt:    timestamp(now),
	}
	if rec.Organization == "" {
		rec.Organization = "未知单位"
	}
	if rec.Date == "" {
		rec.Date = now.Format("2006-01-02")
	}
	s.store.insertArchive(rec)
	s.notify(userID, "status", "申请提交成功", fmt.Sprintf("您的\"%s\"档案申请已提交，系统正在进行自动审核。", rec.Title))

	// The submitted record is echoed even when approval follows immediately.
	if s.opts.AutoApprove {
		s.store.updateArchive(userID, rec.ID, func(r *dto.ArchiveRecord) { r.Status = "approved" })
		s.notify(userID, "certificate", "审核通过", fmt.Sprintf("恭喜！您的\"%s\"已通过审核并正式归档。", rec.Title))
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) updateArchive(c *gin.Context) {
	var body archiveUpdateBody
	if !s.bind(c, &body) {
		return
	}
	req := body.ArchiveUpdateRequest
	if req.Status != nil {
		switch *req.Status {
		case "approved", "pending", "rejected":
		default:
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, dto.ErrorPayload{Detail: []validationIssue{{
				Loc: []string{"body", "status"}, Msg: "status: Input should be 'approved', 'pending' or 'rejected'", Type: "literal_error",
			}}})
			return
		}
		if s.opts.IgnoreStatusUpdates {
			req.Status = nil
		}
	}
	if req.Title == nil && req.Category == nil && req.Organization == nil && req.Date == nil &&
		req.Status == nil && req.ImageURL == nil && req.Description == nil {
		abortDetail(c, http.StatusBadRequest, "没有要更新的数据")
		return
	}
	now := timestamp(s.opts.Now())
	rec, ok := s.store.updateArchive(currentUser(c), c.Param("id"), func(r *dto.ArchiveRecord) {
		assign(&r.Title, req.Title)
		assign(&r.Category, req.Category)
		assign(&r.Organization, req.Organization)
		assign(&r.Date, req.Date)
		assign(&r.Status, req.Status)
		assign(&r.ImageURL, req.ImageURL)
		assign(&r.Description, req.Description)
		r.UpdatedAt = now
	})
	if !ok {
		abortDetail(c, http.StatusNotFound, "档案不存在")
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) deleteArchive(c *gin.Context) {
	userID := currentUser(c)
	rec, ok := s.store.deleteArchive(userID, c.Param("id"))
	if !ok {
		abortDetail(c, http.StatusNotFound, "档案不存在")
		return
	}
	s.notify(userID, "alert", "成长数据已删除", fmt.Sprintf("按照您的请求，条目\"%s\"已从您的时间轴中移除。", rec.Title))
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "删除成功"})
}

func (s *Server) listNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.listNotifications(currentUser(c)))
}

func (s *Server) markRead(c *gin.Context) {
	s.store.markRead(currentUser(c), c.Param("id"))
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "已标记为已读"})
}

func (s *Server) markAllRead(c *gin.Context) {
	s.store.markRead(currentUser(c), "")
	c.JSON(http.StatusOK, dto.MessageResponse{Message: "已全部标记为已读"})
}

func assign(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
