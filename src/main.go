package main

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"kiteops/src/common"
	"kiteops/src/config"
	"kiteops/src/db"
	"kiteops/src/lib"
	"kiteops/src/middlewares"
	"kiteops/src/models"
	"kiteops/src/types"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	_ "github.com/joho/godotenv/autoload"
)

const (
	apiPrefix string = "/api/v1"
)

var bookableDateValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	datetime, err := time.Parse(config.TIME_PARSE_FORMAT, date)
	if err != nil {
		return false
	}
	if ok {
		today := time.Now()
		if today.After(datetime) {
			return false
		}
	}
	return true
}

var gtfield validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	datetime, err := time.Parse(config.TIME_PARSE_FORMAT, date)
	if err != nil {
		return false
	}
	field := fl.Parent().FieldByName(fl.Param())
	fieldValue := field.Interface().(string)
	fielddatetime, err := time.Parse(config.TIME_PARSE_FORMAT, fieldValue)
	if err != nil {
		return false
	}
	if ok {
		if fielddatetime.After(datetime) {
			return false
		}
	}
	return true
}

var ltfield validator.Func = func(fl validator.FieldLevel) bool {
	date, ok := fl.Field().Interface().(string)
	datetime, err := time.Parse(config.TIME_PARSE_FORMAT, date)
	if err != nil {
		return false
	}
	field := fl.Parent().FieldByName(fl.Param())
	var fieldValue string
	switch v := field.Interface().(type) {
	case string:
		fieldValue = v
	case *string:
		if v == nil {
			return true
		}
		fieldValue = *v
	default:
		return false
	}
	fielddatetime, err := time.Parse(config.TIME_PARSE_FORMAT, fieldValue)
	if err != nil {
		return false
	}
	if ok {
		if datetime.After(fielddatetime) {
			return false
		}
	}
	return true
}

func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("bookabledate", bookableDateValidatorFunc)
		v.RegisterValidation("gtdate", gtfield)
		v.RegisterValidation("ltdate", ltfield)
	}
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.Use(middlewares.SecureHeaders)
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(200, "ok")
	})
	return router
}

func maintenanceModeMiddleware(g *gin.Engine) *gin.Engine {
	g.Use(func(ctx *gin.Context) {
		mm := os.Getenv("MAINTENANCE_MODE")
		enabled, err := strconv.ParseBool(mm)
		if err == nil && enabled {
			log.Println("server is under maintenance")
			ctx.AbortWithStatusJSON(503, "server is under maintenance")
			return
		}
	})
	return g
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	apiv1 := g.Group(apiPrefix)
	return apiv1
}

func initDb() {
	db := db.GetDb()
	err := db.AutoMigrate(
		&models.User{},
		&models.Service{},
		&models.Instructor{},
		&models.GroupBooking{},
		&models.Participant{},
		&models.WalletAccount{},
		&models.WalletTransaction{},
		&models.OutboxEvent{},
	)
	if err != nil {
		log.Fatalf("error migration: %s", err.Error())
	}
}

func initScheduler() {
	if _, err := lib.CreateCronJob(common.ExpireStaleInvitations, config.INVITATION_SWEEP_EVERY); err != nil {
		log.Printf("Error scheduling invitation sweep: %s\n", err.Error())
	}
	if _, err := lib.CreateCronJob(common.PublishPendingEvents, time.Minute); err != nil {
		log.Printf("Error scheduling outbox publisher: %s\n", err.Error())
	}
	sched, err := lib.GetScheduler()
	if err != nil {
		log.Println("An error has occurred. Check logs for info")
		return
	}
	sched.Start()
}

func main() {
	registerValidators()
	initDb()

	roleCache := lib.NewRoleCache(lib.GetRedisClient(), config.ROLE_CACHE_TTL, time.Now)
	middlewares.UseRoleCache(roleCache)

	router := setupRouter()
	router = maintenanceModeMiddleware(router)

	corsConfig := cors.DefaultConfig()
	origins := os.Getenv("CORS_ORIGINS")
	if origins != "" {
		corsConfig.AllowOrigins = strings.Split(origins, ",")
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	router.Use(cors.New(corsConfig))

	guestAuthRoutes(router)
	public := apiv1Group(router)
	invitationHandlers(public)

	authed := apiv1Group(router)
	authed.Use(middlewares.AuthMiddleware)
	groupBookingHandlers(authed)
	walletHandlers(authed)

	initScheduler()

	// Dev tooling tails the lifecycle topic locally.
	if config.API_ENV == string(types.Local) {
		lib.KafkaConsumer("kiteops-api", []string{"group-bookings"}, func(body string) {
			log.Printf("[group-bookings]: %s\n", body)
		})
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Error starting server: %s\n", err.Error())
	}
}
