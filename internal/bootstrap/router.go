package bootstrap

import (
	"database/sql"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	httpapi "github.com/collabhub-dev/collab-backend/internal/api/http"
	"github.com/collabhub-dev/collab-backend/internal/api/http/middleware"
	authhttp "github.com/collabhub-dev/collab-backend/internal/auth/http"
	authmw "github.com/collabhub-dev/collab-backend/internal/auth/middleware"
	authrepo "github.com/collabhub-dev/collab-backend/internal/auth/repository"
	"github.com/collabhub-dev/collab-backend/internal/events"
	"github.com/collabhub-dev/collab-backend/internal/files"
	notifhttp "github.com/collabhub-dev/collab-backend/internal/notifications/http"
	notifrepo "github.com/collabhub-dev/collab-backend/internal/notifications/repository"
	projhttp "github.com/collabhub-dev/collab-backend/internal/projects/http"
	projrepo "github.com/collabhub-dev/collab-backend/internal/projects/repository"
	projsvc "github.com/collabhub-dev/collab-backend/internal/projects/service"
)

type RouterDeps struct {
	ServiceName string
	Version     string
	DB          *sql.DB
	Redis       *redis.Client
	Blobs       files.BlobStore
	AuthClient  *fbauth.Client
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	r := gin.Default()

	r.Use(cors.Default())
	r.Use(middleware.RequestIDMiddleware())

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, dep.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)

	userRepo := authrepo.NewUserRepository(dep.DB)
	projectRepo := projrepo.NewProjectRepository(dep.DB)
	notificationRepo := notifrepo.NewNotificationRepository(dep.DB)

	pipeline := files.NewPipeline(dep.Blobs)
	publisher := events.NewPublisher(dep.Redis)
	projectSvc := projsvc.NewProjectService(projectRepo, userRepo, pipeline, dep.Blobs, publisher)

	api := r.Group("/api/v1")
	api.Use(authmw.FirebaseAuthMiddleware(dep.AuthClient, userRepo))

	authhttp.New().Register(api.Group("/users"))
	projhttp.New(projectSvc).Register(api.Group("/projects"))
	notifhttp.New(notificationRepo, dep.Redis).Register(api.Group("/notifications"))

	return r
}
