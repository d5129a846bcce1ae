package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/pdf-extractor-api/utils/response"
)

type APIServer struct {
	app           *fiber.App
	listenAddress string
}

// NewAPIServer creates the fiber app. bodyLimit caps the request size in bytes;
// a little headroom over the upload limit covers multipart framing.
func NewAPIServer(listenAddress string, bodyLimit int) *APIServer {
	return &APIServer{
		app: fiber.New(fiber.Config{
			AppName:               "PDF Extractor API",
			BodyLimit:             bodyLimit,
			DisableStartupMessage: true,
			ErrorHandler:          errorHandler,
		}),
		listenAddress: listenAddress,
	}
}

func (s *APIServer) GetEngine() *fiber.App {
	return s.app
}

func (s *APIServer) Run() error {
	log.Info("Starting API Server")
	log.Infof("Listening on %s", s.listenAddress)

	return s.app.Listen(s.listenAddress)
}

// Shutdown stops accepting connections and waits for in-flight requests
func (s *APIServer) Shutdown() error {
	return s.app.Shutdown()
}

// errorHandler keeps framework errors (body too large, bad method) inside the
// service's error envelope
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code = fiberErr.Code
	}
	return response.Error(c, code, err.Error())
}
