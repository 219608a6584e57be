package compare

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"tablediff/core/relation/sqlrel"
	"tablediff/core/storage"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Request describes one comparison between two database tables.
type Request struct {
	LeftTable    string   `json:"left_table"`
	RightTable   string   `json:"right_table"`
	JoinColumns  []string `json:"join_columns"`
	AbsTol       float64  `json:"abs_tol"`
	RelTol       float64  `json:"rel_tol"`
	IgnoreSpaces bool     `json:"ignore_spaces"`
	LeftName     string   `json:"left_name"`
	RightName    string   `json:"right_name"`
	// SampleRows and SampleColumns bound the report samples; zero values
	// fall back to the server defaults.
	SampleRows    int `json:"sample_rows"`
	SampleColumns int `json:"sample_columns"`
	// UploadReport stores an HTML rendering of the report in object
	// storage and returns its object name in the summary.
	UploadReport bool `json:"upload_report"`
}

// ColumnSummary is the JSON shape of one column's statistics.
type ColumnSummary struct {
	Column          string  `json:"column"`
	LeftType        string  `json:"left_type"`
	RightType       string  `json:"right_type"`
	TypesCompatible bool    `json:"types_compatible"`
	MatchCount      int64   `json:"match_count"`
	MismatchCount   int64   `json:"mismatch_count"`
	MaxDiff         float64 `json:"max_diff"`
	NullDiff        int64   `json:"null_diff"`
}

// Summary is the JSON result of a comparison.
type Summary struct {
	LeftName         string          `json:"left_name"`
	RightName        string          `json:"right_name"`
	Matches          bool            `json:"matches"`
	AllColumnsMatch  bool            `json:"all_columns_match"`
	AllRowsOverlap   bool            `json:"all_rows_overlap"`
	HasDuplicateKeys bool            `json:"has_duplicate_keys"`
	MatchingRows     int64           `json:"matching_rows"`
	LeftOnlyColumns  []string        `json:"left_only_columns"`
	RightOnlyColumns []string        `json:"right_only_columns"`
	Columns          []ColumnSummary `json:"columns"`
	Report           string          `json:"report"`
	ReportObject     string          `json:"report_object,omitempty"`
}

// Service runs comparisons over database tables and stores reports.
type Service struct {
	db     *gorm.DB
	client storage.Client
	bucket string
	logger *zap.Logger
}

// NewService creates a new comparison service.
func NewService(db *gorm.DB, client storage.Client, bucket string, logger *zap.Logger) *Service {
	return &Service{db: db, client: client, bucket: bucket, logger: logger}
}

// Run resolves both tables, compares them and renders the report.
func (s *Service) Run(ctx context.Context, req Request) (*Summary, error) {
	if s.db == nil {
		return nil, fmt.Errorf("%w: no database connection configured", ErrValidation)
	}
	if req.LeftTable == "" || req.RightTable == "" {
		return nil, fmt.Errorf("%w: both table names are required", ErrValidation)
	}

	left, err := sqlrel.Table(s.db.WithContext(ctx), req.LeftTable)
	if err != nil {
		return nil, err
	}
	right, err := sqlrel.Table(s.db.WithContext(ctx), req.RightTable)
	if err != nil {
		return nil, err
	}

	cmp, err := New(left, right, Options{
		JoinColumns:  req.JoinColumns,
		AbsTol:       req.AbsTol,
		RelTol:       req.RelTol,
		IgnoreSpaces: req.IgnoreSpaces,
		LeftName:     req.LeftName,
		RightName:    req.RightName,
		Observer:     NewZapObserver(s.logger),
	})
	if err != nil {
		return nil, err
	}

	report, err := cmp.Report(req.SampleRows, req.SampleColumns, "")
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		LeftName:         cmp.LeftName(),
		RightName:        cmp.RightName(),
		Matches:          cmp.Matches(false),
		AllColumnsMatch:  cmp.AllColumnsMatch(),
		AllRowsOverlap:   cmp.AllRowsOverlap(),
		HasDuplicateKeys: cmp.HasDuplicateKeys(),
		MatchingRows:     cmp.CountMatchingRows(),
		LeftOnlyColumns:  cmp.LeftOnlyColumns(),
		RightOnlyColumns: cmp.RightOnlyColumns(),
		Report:           report,
	}
	for _, stat := range cmp.ColumnStats() {
		summary.Columns = append(summary.Columns, ColumnSummary{
			Column:          stat.Column,
			LeftType:        stat.LeftType.String(),
			RightType:       stat.RightType.String(),
			TypesCompatible: stat.TypesCompatible,
			MatchCount:      stat.MatchCount,
			MismatchCount:   stat.MismatchCount,
			MaxDiff:         stat.MaxDiff,
			NullDiff:        stat.NullDiff,
		})
	}

	if req.UploadReport {
		object, err := s.uploadReport(ctx, cmp, report)
		if err != nil {
			return nil, err
		}
		summary.ReportObject = object
	}
	return summary, nil
}

// uploadReport stores the HTML rendering of a report in the configured
// bucket and returns the object name.
func (s *Service) uploadReport(ctx context.Context, cmp *Comparison, report string) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("%w: report upload requested but no storage configured", ErrValidation)
	}
	if err := s.ensureBucket(ctx); err != nil {
		return "", err
	}
	html := HTMLReport(report)
	object := fmt.Sprintf("%s_%s_%s_%s.html",
		strings.ToLower(cmp.LeftName()),
		strings.ToLower(cmp.RightName()),
		time.Now().UTC().Format("20060102T150405"),
		uuid.NewString()[:8])

	_, err := s.client.PutObject(ctx, s.bucket, object,
		strings.NewReader(html), int64(len(html)),
		minio.PutObjectOptions{ContentType: "text/html"})
	if err != nil {
		return "", fmt.Errorf("uploading report: %w", err)
	}
	s.logger.Info("Report uploaded",
		zap.String("bucket", s.bucket),
		zap.String("object", object))
	return object, nil
}

func (s *Service) ensureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("checking bucket %q: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("creating bucket %q: %w", s.bucket, err)
	}
	return nil
}

// ListReports returns the object names of all stored reports.
func (s *Service) ListReports(ctx context.Context) ([]string, error) {
	if s.client == nil {
		return nil, fmt.Errorf("%w: no storage configured", ErrValidation)
	}
	var names []string
	for info := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{}) {
		if info.Err != nil {
			return nil, fmt.Errorf("listing reports: %w", info.Err)
		}
		names = append(names, info.Key)
	}
	return names, nil
}

// GetReport returns a reader over a stored report. The caller closes it.
func (s *Service) GetReport(ctx context.Context, object string) (io.ReadCloser, error) {
	if s.client == nil {
		return nil, fmt.Errorf("%w: no storage configured", ErrValidation)
	}
	if object == "" {
		return nil, fmt.Errorf("%w: report name is required", ErrValidation)
	}
	reader, err := s.client.GetObject(ctx, s.bucket, object, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("fetching report %q: %w", object, err)
	}
	return reader, nil
}

// DeleteReport removes a stored report.
func (s *Service) DeleteReport(ctx context.Context, object string) error {
	if s.client == nil {
		return fmt.Errorf("%w: no storage configured", ErrValidation)
	}
	if object == "" {
		return fmt.Errorf("%w: report name is required", ErrValidation)
	}
	if err := s.client.RemoveObject(ctx, s.bucket, object, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("deleting report %q: %w", object, err)
	}
	s.logger.Info("Report deleted",
		zap.String("bucket", s.bucket),
		zap.String("object", object))
	return nil
}
