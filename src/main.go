package main

import (
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"path"
	"regexp"
	"strconv"

	"rsv/src/boot"
	"rsv/src/codes"
	"rsv/src/config"
	"rsv/src/engine"
	"rsv/src/hooks"
	"rsv/src/payment"
	"rsv/src/types"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	_ "github.com/joho/godotenv/autoload"
)

const (
	apiPrefix string = "/api/v1"
)

// Shared by the route handlers, wired once in main.
var (
	apiEngine     *engine.Engine
	apiRegistry   *payment.Registry
	apiDispatcher *hooks.Dispatcher
)

var paymentMethodValidatorFunc validator.Func = func(fl validator.FieldLevel) bool {
	method, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	switch types.PaymentMethod(method) {
	case types.PAYMENT_METHOD_CARD, types.PAYMENT_METHOD_TRANSFER, types.PAYMENT_METHOD_FREE:
		return true
	}
	return false
}

func setupRouter() *gin.Engine {
	router := gin.Default()
	router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, "ok")
	})
	return router
}

func maintenanceModeMiddleware(g *gin.Engine) *gin.Engine {
	g.Use(func(ctx *gin.Context) {
		mm := os.Getenv("MAINTENANCE_MODE")
		atoi, err := strconv.ParseBool(mm)
		if err == nil && atoi {
			err := errors.New("server is under maintenance")
			log.Println(err.Error())
			ctx.AbortWithStatusJSON(http.StatusServiceUnavailable, err.Error())
			return
		}
	})
	return g
}

func apiv1Group(g *gin.Engine) *gin.RouterGroup {
	apiv1 := g.Group(apiPrefix)
	return apiv1
}

func initLogger() {
	cwd, _ := os.Getwd()
	serverLogs := path.Join(cwd, "logs", "server.log")
	apiLogs := path.Join(cwd, "logs", "api.log")
	gin.ForceConsoleColor()

	f, _ := os.Create(apiLogs)
	gin.DefaultWriter = io.MultiWriter(f, os.Stdout)
	log.SetOutput(&lumberjack.Logger{
		Filename:   serverLogs,
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	})
}

func main() {
	apiEnv := os.Getenv("API_ENV")
	if apiEnv == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			panic(err)
		}
	}
	initLogger()

	conn := boot.InitDb()
	cfg := config.LoadSnapshot()

	apiDispatcher = hooks.NewDispatcher(nil)
	apiDispatcher.Start()
	defer apiDispatcher.Close()

	apiEngine = engine.New(conn, cfg, apiDispatcher)
	apiRegistry = payment.NewRegistry(
		payment.NewStripeProvider(),
		payment.NewOfflineProvider(apiEngine),
		payment.NewFreeProvider(),
	)
	allocator := codes.NewAllocator(conn, cfg)

	boot.InitScheduler(apiEngine, allocator, cfg)
	defer boot.StopScheduler()
	go boot.InitBroker(apiEngine, conn)

	router := setupRouter()

	appHost := os.Getenv("APP_HOST")
	if apiEnv == "local" {
		router.Use(cors.Default())
	} else {
		cc := cors.DefaultConfig()
		cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "PATCH", "PUT", "DELETE", "HEAD")
		cc.AllowHeaders = append(cc.AllowHeaders, "Origin", "Authorization", "x-secret")
		cc.AllowOriginFunc = func(origin string) bool {
			match, _ := regexp.MatchString(appHost, origin)
			return match
		}
		cc.AllowCredentials = true
		cc.AllowAllOrigins = false
		router.Use(cors.New(cc))
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("paymentmethod", paymentMethodValidatorFunc)
	}

	router = maintenanceModeMiddleware(router)

	apiv1 := apiv1Group(router)
	reservationHandlers(apiv1)
	waitingListHandlers(apiv1)
	codeHandlers(apiv1)

	stripeWebhookRoute(router)

	router.Run(":8080")
}
