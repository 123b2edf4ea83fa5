package container

import (
	"log/slog"

	"github.com/cloudinary/cloudinary-go/v2"
	"go.mongodb.org/mongo-driver/mongo"

	"ideanote/internal/config"
	"ideanote/internal/credentials"
	"ideanote/internal/models"
	"ideanote/internal/services"
)

// Container holds all application dependencies
type Container struct {
	Logger     *slog.Logger
	Config     *config.Config
	Cloudinary *cloudinary.Cloudinary

	MongoDBClient *mongo.Client
	UserRepo      models.UserRepo
	HashPool      *credentials.Pool

	UserService *services.UserService
	PostService *services.PostService
}

// NewContainer creates a new dependency injection container
func NewContainer(
	logger *slog.Logger,
	cfg *config.Config,
	cld *cloudinary.Cloudinary,
	mongoDBClient *mongo.Client,
) *Container {
	userRepo := models.MongodbNewRepo(mongoDBClient)

	hasher := credentials.NewBcryptHasherWithCost(cfg.BcryptCost)
	hashPool := credentials.NewPool(hasher, cfg.HashWorkers, cfg.HashQueue)

	userService := services.NewUserService(userRepo, hashPool)
	postService := services.NewPostService(userRepo)

	return &Container{
		Logger:        logger,
		Config:        cfg,
		Cloudinary:    cld,
		MongoDBClient: mongoDBClient,
		UserRepo:      userRepo,
		HashPool:      hashPool,
		UserService:   userService,
		PostService:   postService,
	}
}

// Close releases background resources owned by the container.
func (c *Container) Close() {
	c.HashPool.Close()
}
