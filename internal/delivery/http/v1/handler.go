package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/adanyl0v/go-taskboard/internal/media"
	"github.com/adanyl0v/go-taskboard/internal/metrics"
	"github.com/adanyl0v/go-taskboard/internal/services"
)

type Handler interface {
	HandleLogin(c *gin.Context)
	HandleRefresh(c *gin.Context)
	HandleSignup(c *gin.Context)
	HandleLogout(c *gin.Context)
	HandleAuthMiddleware(c *gin.Context)
	HandleRequestMiddleware(c *gin.Context)

	HandleBoard(c *gin.Context)
	HandleTaskForm(c *gin.Context)
	HandleCreateTask(c *gin.Context)
	HandleEditTaskForm(c *gin.Context)
	HandleUpdateTask(c *gin.Context)
	HandleDeleteTaskForm(c *gin.Context)
	HandleDeleteTask(c *gin.Context)
	HandleTaskDetail(c *gin.Context)
	HandleSetTaskStatus(c *gin.Context)
	HandleReportForm(c *gin.Context)
	HandleReportProgress(c *gin.Context)
	HandleExportCSV(c *gin.Context)

	HandleListProjects(c *gin.Context)
	HandleProjectForm(c *gin.Context)
	HandleCreateProject(c *gin.Context)
	HandleProjectDetail(c *gin.Context)
	HandleEditProjectForm(c *gin.Context)
	HandleUpdateProject(c *gin.Context)
	HandleDeleteProjectForm(c *gin.Context)
	HandleDeleteProject(c *gin.Context)

	HandleTagForm(c *gin.Context)
	HandleCreateTag(c *gin.Context)

	HandleGetProfile(c *gin.Context)
	HandleUpdateProfile(c *gin.Context)

	HandleDashboard(c *gin.Context)
	HandleSearchUsers(c *gin.Context)
}

// Services bundles the application services the handlers call.
type Services struct {
	Auth      services.AuthService
	Sessions  services.SessionService
	Tasks     services.TaskService
	Projects  services.ProjectService
	Tags      services.TagService
	Profiles  services.ProfileService
	Users     services.UserService
	Dashboard services.DashboardService
}

const defaultMaxUploadSize = 10 << 20

type Options struct {
	// Where denied or finished actions send the browser.
	FallbackPath string
	// Public prefix of media URLs.
	MediaURL      string
	MaxUploadSize int64
}

type handlerImpl struct {
	logger    zerolog.Logger
	auth      services.AuthService
	sessions  services.SessionService
	tasks     services.TaskService
	projects  services.ProjectService
	tags      services.TagService
	profiles  services.ProfileService
	users     services.UserService
	dashboard services.DashboardService
	media     *media.Store
	metrics   *metrics.Metrics
	opts      Options
}

func New(
	logger zerolog.Logger,
	svc Services,
	mediaStore *media.Store,
	m *metrics.Metrics,
	opts Options,
) Handler {
	if opts.FallbackPath == "" {
		opts.FallbackPath = "/tablero/"
	}
	if opts.MediaURL == "" {
		opts.MediaURL = "/media/"
	}
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = defaultMaxUploadSize
	}
	return &handlerImpl{
		logger:    logger,
		auth:      svc.Auth,
		sessions:  svc.Sessions,
		tasks:     svc.Tasks,
		projects:  svc.Projects,
		tags:      svc.Tags,
		profiles:  svc.Profiles,
		users:     svc.Users,
		dashboard: svc.Dashboard,
		media:     mediaStore,
		metrics:   m,
		opts:      opts,
	}
}

// Register mounts every route of the board on router.
func Register(router gin.IRouter, h Handler) {
	router.POST("/signup/", h.HandleSignup)
	router.POST("/login/", h.HandleLogin)
	router.POST("/refresh/", h.HandleRefresh)

	r := router.Group("/", h.HandleAuthMiddleware)
	r.POST("/logout/", h.HandleLogout)

	r.GET("/", h.HandleBoard)
	r.GET("/tablero/", h.HandleBoard)
	r.GET("/dashboard/", h.HandleDashboard)
	r.GET("/exportar-csv/", h.HandleExportCSV)

	r.GET("/crear-tarea/", h.HandleTaskForm)
	r.POST("/crear-tarea/", h.HandleCreateTask)
	r.GET("/editar-tarea/:id/", h.HandleEditTaskForm)
	r.POST("/editar-tarea/:id/", h.HandleUpdateTask)
	r.GET("/eliminar-tarea/:id/", h.HandleDeleteTaskForm)
	r.POST("/eliminar-tarea/:id/", h.HandleDeleteTask)
	r.GET("/tarea/:id/detalle/", h.HandleTaskDetail)
	r.GET("/cambiar-estado/:id/:status/", h.HandleSetTaskStatus)
	r.POST("/cambiar-estado/:id/:status/", h.HandleSetTaskStatus)
	r.GET("/reportar-avance/:id/", h.HandleReportForm)
	r.POST("/reportar-avance/:id/", h.HandleReportProgress)

	r.GET("/proyectos/", h.HandleListProjects)
	r.GET("/crear-proyecto/", h.HandleProjectForm)
	r.POST("/crear-proyecto/", h.HandleCreateProject)
	r.GET("/proyecto/:id/", h.HandleProjectDetail)
	r.GET("/proyecto/editar/:id/", h.HandleEditProjectForm)
	r.POST("/proyecto/editar/:id/", h.HandleUpdateProject)
	r.GET("/proyecto/eliminar/:id/", h.HandleDeleteProjectForm)
	r.POST("/proyecto/eliminar/:id/", h.HandleDeleteProject)

	r.GET("/crear-etiqueta/", h.HandleTagForm)
	r.POST("/crear-etiqueta/", h.HandleCreateTag)

	r.GET("/perfil/", h.HandleGetProfile)
	r.POST("/perfil/", h.HandleUpdateProfile)

	r.GET("/api/buscar-usuarios/", h.HandleSearchUsers)
}
