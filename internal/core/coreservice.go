package core

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/jo-hoe/passportphoto/internal/backend/database"
	"github.com/jo-hoe/passportphoto/internal/backend/facedetection"
	"github.com/jo-hoe/passportphoto/internal/backend/imageprocessing"
	"github.com/jo-hoe/passportphoto/internal/backend/matting"
	"github.com/jo-hoe/passportphoto/internal/backend/pipeline"
	"github.com/jo-hoe/passportphoto/internal/backend/sheet"
	"github.com/jo-hoe/passportphoto/internal/backend/storage"
)

const (
	DefaultSize       = "us"
	DefaultBackground = imageprocessing.BackgroundWhite

	processedPrefix   = "processed_"
	defaultUploadExt  = ".jpg"
	sheetLoadParallel = 4
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNoImages       = sheet.ErrNoImages
)

type UploadResult struct {
	Filename string `json:"filename"`
	Filepath string `json:"filepath"`
}

type ProcessRequest struct {
	Filename   string
	Size       string
	Background string
	Watermark  bool
}

type ProcessResult struct {
	ProcessedFilename string                   `json:"processed_filename"`
	ProcessedFilepath string                   `json:"processed_filepath"`
	Size              imageprocessing.SizeSpec `json:"size"`
	Watermark         bool                     `json:"watermark"`
}

type SheetResult struct {
	PDFFilename string `json:"pdf_filename"`
	Pages       int    `json:"pages"`
}

// Dependencies are the collaborators a CoreService works with
type Dependencies struct {
	Database database.DatabaseService
	Store    storage.Store
	Locator  facedetection.Locator
	BoxCache facedetection.BoxCache
	Remover  matting.Remover
}

type CoreService struct {
	config          *ServiceConfig
	databaseService database.DatabaseService
	store           storage.Store
	faceLocator     *facedetection.CachedLocator
	decoder         *imageprocessing.Decoder
	sizes           imageprocessing.SizeTable
	pipeline        *pipeline.Invoker
	sheetEngine     *sheet.Engine
	newID           func() string
}

// NewCoreService builds every collaborator from config
func NewCoreService(ctx context.Context, config *ServiceConfig) (*CoreService, error) {
	databaseService, err := database.NewDatabase(config.Database.Type, config.Database.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("database initialized successfully", "type", config.Database.Type)

	deps := Dependencies{Database: databaseService}
	closeOnError := func(err error) (*CoreService, error) {
		_ = databaseService.Close()
		if deps.BoxCache != nil {
			_ = deps.BoxCache.Close()
		}
		return nil, err
	}

	deps.Store, err = storage.New(ctx, storage.Options{
		Type:         config.Storage.Type,
		UploadDir:    config.Storage.UploadDir,
		ProcessedDir: config.Storage.ProcessedDir,
		S3: storage.S3Config{
			Region:    config.Storage.S3.Region,
			Bucket:    config.Storage.S3.Bucket,
			AccessKey: config.Storage.S3.AccessKey,
			SecretKey: config.Storage.S3.SecretKey,
			Endpoint:  config.Storage.S3.Endpoint,
		},
	})
	if err != nil {
		return closeOnError(fmt.Errorf("failed to initialize storage: %w", err))
	}

	deps.Locator, err = facedetection.NewLocator(facedetection.Options{
		Type:        config.FaceDetection.Type,
		CascadePath: config.FaceDetection.CascadePath,
		Endpoint:    config.FaceDetection.Endpoint,
		MinSize:     config.FaceDetection.MinSize,
		Timeout:     config.FaceDetection.Timeout,
	})
	if err != nil {
		return closeOnError(fmt.Errorf("failed to initialize face detection: %w", err))
	}

	deps.BoxCache, err = facedetection.NewBoxCache(ctx, config.FaceDetection.Cache.RedisAddress, config.FaceDetection.Cache.TTL)
	if err != nil {
		return closeOnError(fmt.Errorf("failed to initialize face box cache: %w", err))
	}

	deps.Remover, err = matting.NewRemover(config.Matting.Type, config.Matting.Endpoint, config.Matting.Timeout)
	if err != nil {
		return closeOnError(fmt.Errorf("failed to initialize background removal: %w", err))
	}

	slog.Info("core service initialized",
		"storage", config.Storage.Type,
		"face_detection", config.FaceDetection.Type,
		"matting", config.Matting.Type)
	return NewCoreServiceWithDependencies(config, deps), nil
}

// NewCoreServiceWithDependencies wires a CoreService around existing collaborators
func NewCoreServiceWithDependencies(config *ServiceConfig, deps Dependencies) *CoreService {
	cache := deps.BoxCache
	if cache == nil {
		cache = facedetection.NewMemoryBoxCache(config.FaceDetection.Cache.TTL)
	}
	faceLocator := facedetection.NewCachedLocator(deps.Locator, cache)
	sizes := imageprocessing.DefaultSizes()

	return &CoreService{
		config:          config,
		databaseService: deps.Database,
		store:           deps.Store,
		faceLocator:     faceLocator,
		decoder:         imageprocessing.NewDecoder(config.SVGFallbackWidth, config.SVGFallbackHeight),
		sizes:           sizes,
		pipeline: pipeline.NewInvoker(
			pipeline.NewLocateFaceStep(faceLocator),
			pipeline.NewComposeStep(imageprocessing.NewComposer(sizes)),
			pipeline.NewBackgroundStep(imageprocessing.NewBackgroundReplacer(deps.Remover)),
			&pipeline.WatermarkStep{},
		),
		sheetEngine: sheet.NewEngine(),
		newID:       func() string { return uuid.NewString() },
	}
}

// Sizes returns the supported passport sizes by key
func (service *CoreService) Sizes() imageprocessing.SizeTable {
	return service.sizes
}

// Upload stores data under a generated name that keeps the original extension
func (service *CoreService) Upload(ctx context.Context, originalName string, data []byte, clientIP string) (*UploadResult, error) {
	if originalName == "" {
		return nil, fmt.Errorf("%w: no file selected", ErrInvalidRequest)
	}
	ext := filepath.Ext(filepath.Base(originalName))
	if ext == "" || !storage.ValidName(ext) {
		ext = defaultUploadExt
	}
	filename := service.newID() + ext

	location, err := service.store.Save(ctx, storage.AreaUploads, filename, data)
	if err != nil {
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}
	slog.Debug("CoreService: upload stored", "filename", filename, "size_bytes", len(data))

	if err := service.audit(ctx, database.ActionUpload, filename, clientIP); err != nil {
		return nil, err
	}
	return &UploadResult{Filename: filename, Filepath: location}, nil
}

// Process turns an upload into a passport photo saved as processed_<filename>
func (service *CoreService) Process(ctx context.Context, req ProcessRequest, clientIP string) (*ProcessResult, error) {
	if req.Filename == "" {
		return nil, fmt.Errorf("%w: no filename provided", ErrInvalidRequest)
	}
	if req.Size == "" {
		req.Size = DefaultSize
	}
	if req.Background == "" {
		req.Background = DefaultBackground
	}

	data, err := storage.ReadAll(ctx, service.store, storage.AreaUploads, req.Filename)
	if err != nil {
		return nil, err
	}
	spec, err := service.sizes.Lookup(req.Size)
	if err != nil {
		return nil, err
	}

	img, format, err := service.decoder.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	slog.Debug("CoreService: processing upload", "filename", req.Filename, "format", format, "size", req.Size, "background", req.Background)

	frame := &pipeline.Frame{
		Key:        req.Filename,
		Image:      img,
		Size:       req.Size,
		Background: req.Background,
		Watermark:  req.Watermark,
	}
	if err := service.pipeline.Execute(ctx, frame); err != nil {
		return nil, err
	}

	encoded, err := imageprocessing.EncodePNG(frame.Image)
	if err != nil {
		return nil, err
	}
	processedFilename := processedPrefix + req.Filename
	location, err := service.store.Save(ctx, storage.AreaProcessed, processedFilename, encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to store processed image: %w", err)
	}

	if err := service.audit(ctx, database.ActionProcess, processedFilename, clientIP); err != nil {
		return nil, err
	}
	return &ProcessResult{
		ProcessedFilename: processedFilename,
		ProcessedFilepath: location,
		Size:              spec,
		Watermark:         req.Watermark,
	}, nil
}

// OpenDownload opens a file of the processed area. The caller closes the reader.
func (service *CoreService) OpenDownload(ctx context.Context, filename, clientIP string) (io.ReadCloser, error) {
	rc, err := service.store.Open(ctx, storage.AreaProcessed, filename)
	if err != nil {
		return nil, err
	}
	if err := service.audit(ctx, database.ActionDownload, filename, clientIP); err != nil {
		_ = rc.Close()
		return nil, err
	}
	return rc, nil
}

// BuildSheet renders the named processed photos onto A4 pages and stores the PDF.
// Names that do not resolve are skipped.
func (service *CoreService) BuildSheet(ctx context.Context, filenames []string, copies int, clientIP string) (*SheetResult, error) {
	if len(filenames) == 0 {
		return nil, fmt.Errorf("%w: no filenames provided", ErrInvalidRequest)
	}

	images, err := service.loadSheetImages(ctx, filenames)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, ErrNoImages
	}

	pdf, pages, err := service.sheetEngine.Render(images, copies)
	if err != nil {
		return nil, fmt.Errorf("failed to render sheet: %w", err)
	}

	pdfFilename := "passport_photos_" + service.newID() + ".pdf"
	if _, err := service.store.Save(ctx, storage.AreaProcessed, pdfFilename, pdf); err != nil {
		return nil, fmt.Errorf("failed to store sheet: %w", err)
	}

	if err := service.audit(ctx, database.ActionDownloadPDF, pdfFilename, clientIP); err != nil {
		return nil, err
	}
	return &SheetResult{PDFFilename: pdfFilename, Pages: pages}, nil
}

// loadSheetImages reads and decodes the files concurrently, keeping input order
func (service *CoreService) loadSheetImages(ctx context.Context, filenames []string) ([]image.Image, error) {
	loaded := make([]image.Image, len(filenames))

	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(sheetLoadParallel)
	for i, name := range filenames {
		eg.Go(func() error {
			data, err := storage.ReadAll(gctx, service.store, storage.AreaProcessed, name)
			if errors.Is(err, storage.ErrNotFound) {
				slog.Warn("CoreService: skipping missing sheet image", "filename", name)
				return nil
			}
			if err != nil {
				return err
			}
			img, _, err := service.decoder.Decode(data)
			if err != nil {
				return fmt.Errorf("failed to decode %s: %w", name, err)
			}
			loaded[i] = img
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	images := make([]image.Image, 0, len(loaded))
	for _, img := range loaded {
		if img != nil {
			images = append(images, img)
		}
	}
	return images, nil
}

// RecentLogs returns the newest audit entries
func (service *CoreService) RecentLogs(ctx context.Context) ([]*database.LogEntry, error) {
	return service.databaseService.GetRecentLogEntries(ctx, database.RecentLogLimit)
}

func (service *CoreService) audit(ctx context.Context, action, filename, clientIP string) error {
	if _, err := service.databaseService.AddLogEntry(ctx, action, filename, clientIP); err != nil {
		slog.Error("failed to write audit log", "action", action, "filename", filename, "error", err)
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (service *CoreService) Close() error {
	var errs []error
	if err := service.faceLocator.Close(); err != nil {
		errs = append(errs, err)
	}
	if service.databaseService != nil {
		if err := service.databaseService.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
