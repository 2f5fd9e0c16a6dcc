package backend

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"

	"github.com/jo-hoe/passportphoto/internal/backend/imageprocessing"
	"github.com/jo-hoe/passportphoto/internal/backend/sheet"
	"github.com/jo-hoe/passportphoto/internal/backend/storage"
	"github.com/jo-hoe/passportphoto/internal/common"
	"github.com/jo-hoe/passportphoto/internal/core"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

const headerRealIP = "X-Real-IP"

type APIService struct {
	coreService *core.CoreService
	config      *core.ServiceConfig
}

type processRequest struct {
	Filename   string  `json:"filename" validate:"required"`
	Size       *string `json:"size"`
	Background *string `json:"background"`
	Watermark  *bool   `json:"watermark"`
}

type sheetRequest struct {
	Filenames []string `json:"filenames" validate:"required,min=1"`
	Copies    *int     `json:"copies"`
}

type statusResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func NewAPIService(config *core.ServiceConfig, coreService *core.CoreService) *APIService {
	return &APIService{
		coreService: coreService,
		config:      config,
	}
}

func (service *APIService) SetRoutes(e *echo.Echo) {
	e.HTTPErrorHandler = service.httpErrorHandler
	e.Validator = common.NewGenericEchoValidator()

	// Set probe routes
	e.GET("/", service.statusHandler)
	e.GET("/probe", func(ctx echo.Context) error {
		return ctx.String(http.StatusOK, "ok")
	})

	api := e.Group("/api", middleware.BodyLimit(fmt.Sprintf("%dM", service.config.MaxUploadMB)))
	api.POST("/upload", service.uploadHandler)
	api.POST("/process", service.processHandler)
	api.GET("/download/:filename", service.downloadHandler)
	api.POST("/download-pdf", service.downloadPDFHandler)
	api.GET("/sizes", service.sizesHandler)
	api.GET("/logs", service.logsHandler)
}

func (service *APIService) statusHandler(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, statusResponse{Message: "Passport Photo Maker API", Status: "running"})
}

func (service *APIService) uploadHandler(ctx echo.Context) error {
	file, err := ctx.FormFile("file")
	if err != nil {
		msg := "No file provided"
		// parts without a file name are parsed as plain values
		if form, ferr := ctx.MultipartForm(); ferr == nil && len(form.Value["file"]) > 0 {
			msg = "No file selected"
		}
		slog.Warn("uploadHandler: missing file", "status", http.StatusBadRequest, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, msg)
	}
	if file.Filename == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "No file selected")
	}

	src, err := file.Open()
	if err != nil {
		return service.fail("uploadHandler", fmt.Errorf("failed to open uploaded file: %w", err), file.Filename)
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			slog.Error("uploadHandler: failed to close uploaded file reader", "error", cerr, "filename", file.Filename)
		}
	}()

	data, err := io.ReadAll(src)
	if err != nil {
		return service.fail("uploadHandler", fmt.Errorf("failed to read uploaded file: %w", err), file.Filename)
	}

	result, err := service.coreService.Upload(ctx.Request().Context(), file.Filename, data, clientIP(ctx))
	if err != nil {
		return service.fail("uploadHandler", err, file.Filename)
	}
	return ctx.JSON(http.StatusOK, result)
}

func (service *APIService) processHandler(ctx echo.Context) error {
	var req processRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	processReq := core.ProcessRequest{
		Filename:   req.Filename,
		Size:       core.DefaultSize,
		Background: core.DefaultBackground,
		Watermark:  true,
	}
	if req.Size != nil {
		processReq.Size = *req.Size
	}
	if req.Background != nil {
		processReq.Background = *req.Background
	}
	if req.Watermark != nil {
		processReq.Watermark = *req.Watermark
	}

	result, err := service.coreService.Process(ctx.Request().Context(), processReq, clientIP(ctx))
	if err != nil {
		return service.fail("processHandler", err, req.Filename)
	}
	return ctx.JSON(http.StatusOK, result)
}

func (service *APIService) downloadHandler(ctx echo.Context) error {
	filename, err := url.PathUnescape(ctx.Param("filename"))
	if err != nil || !storage.ValidName(filename) {
		return service.fail("downloadHandler", storage.ErrNotFound, ctx.Param("filename"))
	}

	rc, err := service.coreService.OpenDownload(ctx.Request().Context(), filename, clientIP(ctx))
	if err != nil {
		return service.fail("downloadHandler", err, filename)
	}
	defer func() {
		_ = rc.Close()
	}()

	reader := bufio.NewReader(rc)
	head, _ := reader.Peek(512)
	ctx.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", filepath.Base(filename)))
	return ctx.Stream(http.StatusOK, http.DetectContentType(head), reader)
}

func (service *APIService) downloadPDFHandler(ctx echo.Context) error {
	var req sheetRequest
	if err := ctx.Bind(&req); err != nil {
		return err
	}
	if err := ctx.Validate(&req); err != nil {
		return err
	}

	copies := sheet.DefaultCopiesPerPage
	if req.Copies != nil {
		copies = *req.Copies
	}

	result, err := service.coreService.BuildSheet(ctx.Request().Context(), req.Filenames, copies, clientIP(ctx))
	if err != nil {
		return service.fail("downloadPDFHandler", err, fmt.Sprint(req.Filenames))
	}
	return ctx.JSON(http.StatusOK, result)
}

func (service *APIService) sizesHandler(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, service.coreService.Sizes())
}

func (service *APIService) logsHandler(ctx echo.Context) error {
	entries, err := service.coreService.RecentLogs(ctx.Request().Context())
	if err != nil {
		return service.fail("logsHandler", err, "")
	}
	return ctx.JSON(http.StatusOK, entries)
}

// fail logs a handler error once and hands it to the error handler
func (service *APIService) fail(handler string, err error, filename string) error {
	status, _ := errorStatus(err)
	if status >= http.StatusInternalServerError {
		slog.Error(handler+": request failed", "status", status, "error", err, "filename", filename)
	} else {
		slog.Warn(handler+": request rejected", "status", status, "error", err, "filename", filename)
	}
	return err
}

func (service *APIService) httpErrorHandler(err error, ctx echo.Context) {
	if ctx.Response().Committed {
		return
	}
	status, msg := errorStatus(err)
	if ctx.Request().Method == http.MethodHead {
		err = ctx.NoContent(status)
	} else {
		err = ctx.JSON(status, errorResponse{Error: msg})
	}
	if err != nil {
		slog.Error("failed to write error response", "error", err)
	}
}

// errorStatus maps an error to its HTTP status and client message
func errorStatus(err error) (int, string) {
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &httpErr):
		if httpErr.Internal != nil {
			slog.Debug("http error with internal cause", "error", httpErr.Internal)
		}
		return httpErr.Code, fmt.Sprint(httpErr.Message)
	case errors.Is(err, core.ErrInvalidRequest), errors.Is(err, imageprocessing.ErrInvalidSize):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, "File not found"
	case errors.Is(err, core.ErrNoImages):
		return http.StatusNotFound, "No valid images found"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// clientIP prefers X-Real-IP, then the first X-Forwarded-For hop, then the connection address
func clientIP(ctx echo.Context) string {
	if ip := ctx.Request().Header.Get(headerRealIP); ip != "" {
		return ip
	}
	return ctx.RealIP()
}
