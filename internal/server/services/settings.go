package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/fintrack/fintrack/internal/common"
	"github.com/fintrack/fintrack/internal/logging"
	"github.com/fintrack/fintrack/internal/server/config"
	"github.com/fintrack/fintrack/internal/server/models"
	"github.com/fintrack/fintrack/internal/server/repositories/budgets"
	"github.com/fintrack/fintrack/internal/server/repositories/expenses"
	"github.com/fintrack/fintrack/internal/server/repositories/goals"
	"github.com/fintrack/fintrack/internal/server/repositories/incomes"
)

// Seams for the AWS SDK so tests can intercept client construction.
var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}

	uploadHTTPClient = &http.Client{Timeout: 30 * time.Second}
)

// ExportSnapshot is the full JSON snapshot of a user's active records.
type ExportSnapshot struct {
	Incomes      []models.Income      `json:"incomes"`
	Expenses     []models.Expense     `json:"expenses"`
	SavingsGoals []models.SavingsGoal `json:"savingsGoals"`
	Budgets      []models.Budget      `json:"budgets"`
	ExportedAt   time.Time            `json:"exportedAt"`
}

// SettingsService implements data export, import and backup to
// S3-compatible object storage.
type SettingsService struct {
	incomes  incomes.Repository
	expenses expenses.Repository
	budgets  budgets.Repository
	goals    goals.Repository
	config   *config.Config
	logger   logging.Logger
}

func NewSettingsService(
	incomeRepo incomes.Repository,
	expenseRepo expenses.Repository,
	budgetRepo budgets.Repository,
	goalRepo goals.Repository,
	cfg *config.Config,
	logger logging.Logger,
) *SettingsService {
	return &SettingsService{
		incomes:  incomeRepo,
		expenses: expenseRepo,
		budgets:  budgetRepo,
		goals:    goalRepo,
		config:   cfg,
		logger:   logger,
	}
}

// Export collects all active records of the owner into one snapshot.
func (s *SettingsService) Export(ctx context.Context, userID string) (*ExportSnapshot, error) {
	snap := &ExportSnapshot{ExportedAt: time.Now().UTC()}

	var err error
	if snap.Incomes, err = s.incomes.GetAllActive(ctx, userID); err != nil {
		return nil, err
	}
	if snap.Expenses, err = s.expenses.GetAllActive(ctx, userID); err != nil {
		return nil, err
	}
	if snap.SavingsGoals, err = s.goals.GetAllActive(ctx, userID); err != nil {
		return nil, err
	}
	if snap.Budgets, err = s.budgets.GetAllActive(ctx, userID); err != nil {
		return nil, err
	}
	return snap, nil
}

// Import bulk-inserts records from a snapshot. Records missing required
// fields are skipped; everything inserted gets a fresh ID, the importing
// user as owner and synced=false, so the next sync run picks it all up.
// Field values are taken as-is; records that turn out invalid are
// quarantined by the synchronizer rather than rejected here.
func (s *SettingsService) Import(ctx context.Context, userID string, snap *ExportSnapshot) (int, error) {
	imported := 0
	now := time.Now().UTC()

	for _, in := range snap.Incomes {
		if in.Amount == 0 || in.Source == "" || in.Date == "" {
			continue
		}
		rec := models.Income{
			ID: uuid.NewString(), UserID: userID,
			Amount: in.Amount, Source: in.Source, Date: in.Date, Description: in.Description,
			CreatedAt: now, UpdatedAt: now,
		}
		if err := s.incomes.Create(ctx, &rec); err != nil {
			return imported, err
		}
		imported++
	}

	for _, in := range snap.Expenses {
		if in.Amount == 0 || in.Category == "" || in.Date == "" || in.PaymentMethod == "" {
			continue
		}
		rec := models.Expense{
			ID: uuid.NewString(), UserID: userID,
			Amount: in.Amount, Category: in.Category, Date: in.Date,
			PaymentMethod: in.PaymentMethod, Notes: in.Notes,
			CreatedAt: now, UpdatedAt: now,
		}
		if err := s.expenses.Create(ctx, &rec); err != nil {
			return imported, err
		}
		imported++
	}

	for _, in := range snap.SavingsGoals {
		if in.Name == "" || in.TargetAmount == 0 || in.Deadline == "" {
			continue
		}
		priority := in.Priority
		if priority == "" {
			priority = "Medium"
		}
		rec := models.SavingsGoal{
			ID: uuid.NewString(), UserID: userID,
			Name: in.Name, TargetAmount: in.TargetAmount,
			CurrentContribution: in.CurrentContribution,
			Deadline:            in.Deadline, Priority: priority,
			CreatedAt: now, UpdatedAt: now,
		}
		if err := s.goals.Create(ctx, &rec); err != nil {
			return imported, err
		}
		imported++
	}

	for _, in := range snap.Budgets {
		if in.Name == "" || in.Category == "" || in.Amount == 0 || in.Duration == "" {
			continue
		}
		threshold := in.Threshold
		if threshold == 0 {
			threshold = 80
		}
		rec := models.Budget{
			ID: uuid.NewString(), UserID: userID,
			Name: in.Name, Category: in.Category, Amount: in.Amount,
			Spent: in.Spent, Duration: in.Duration, Threshold: threshold,
			CreatedAt: now, UpdatedAt: now,
		}
		if err := s.budgets.Create(ctx, &rec); err != nil {
			return imported, err
		}
		imported++
	}

	return imported, nil
}

// Backup uploads the owner's export snapshot to object storage via a
// presigned PUT and returns the storage key. Disabled when no S3 endpoint
// is configured.
func (s *SettingsService) Backup(ctx context.Context, userID string) (string, error) {
	if s.config.S3BaseEndpoint == "" {
		return "", fmt.Errorf("%w: backups are not configured", common.ErrInternal)
	}

	snap, err := s.Export(ctx, userID)
	if err != nil {
		return "", err
	}
	payload, err := json.Marshal(snap)
	if err != nil {
		return "", err
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	key := backupStorageKey(userID)
	req, err := presignPutObject(presignClient, ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.config.S3Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(15*time.Minute))
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, req.URL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := uploadHTTPClient.Do(httpReq)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("backup upload failed with status %d", resp.StatusCode)
	}

	s.logger.Info(ctx, "backup uploaded", "user_id", userID, "key", key)
	return key, nil
}

func (s *SettingsService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		awsconfig.WithRegion(s.config.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return newS3PresignClient(client), nil
}

func backupStorageKey(userID string) string {
	d := time.Now()
	return fmt.Sprintf("backups/%s/%d/%d/%d/%v.json", userID, d.Year(), d.Month(), d.Day(), uuid.New())
}
