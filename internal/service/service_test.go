package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"internship-portal/internal/config"
	"internship-portal/internal/domain"
	"internship-portal/internal/metrics"
	"internship-portal/internal/mocks"
	"internship-portal/internal/pkg/i18n"
	"internship-portal/internal/pkg/logger"
	"internship-portal/internal/repository"
	"internship-portal/internal/service"
	"internship-portal/internal/service/toast"
)

var company = domain.Recipient{ID: "company-1", Type: domain.ActorCompany}

func newServices(t *testing.T, cfg *config.Config, sender *mocks.Sender, client *redis.Client) (*service.Services, *repository.Repositories) {
	t.Helper()

	catalog, err := i18n.Default()
	require.NoError(t, err)

	log := logger.Discard()
	repos := repository.NewRepositories()
	services := service.NewServices(repos, service.Collaborators{
		Sender:  sender,
		Toaster: toast.NewLogToaster(log),
		Catalog: catalog,
		Metrics: metrics.New(),
		Logger:  log,
		Redis:   client,
	}, cfg)
	return services, repos
}

func registration() domain.CreateEntityInput {
	return domain.CreateEntityInput{
		Kind:       domain.KindCompanyRegistration,
		OwnerID:    company.ID,
		OwnerType:  domain.ActorCompany,
		Attributes: map[string]string{domain.AttrCompanyName: "Acme"},
	}
}

func TestNewServices_OfficeDefaults(t *testing.T) {
	sender := new(mocks.Sender)
	sender.On("Send", mock.Anything, mock.Anything).Return(nil)
	cfg := &config.Config{Locale: "en", SendMode: "sync", SCADOfficeID: "office-7", SCADOfficeContact: "office7@example.com"}

	services, repos := newServices(t, cfg, sender, nil)

	result, err := services.Lifecycle.CreateEntity(context.Background(), company, registration())

	require.NoError(t, err)
	assert.Equal(t, "office-7", result.Entity.CounterpartyID)
	require.NotNil(t, result.Message)
	assert.Equal(t, "office7@example.com", result.Message.To)

	inbox, err := services.Notification.ListAll(context.Background(), domain.Recipient{ID: "office-7", Type: domain.ActorSCAD})
	require.NoError(t, err)
	assert.Len(t, inbox, 1)

	stored, err := repos.Entity.GetByID(context.Background(), result.Entity.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, stored.Status)
}

func TestNewServices_SendMode(t *testing.T) {
	t.Run("Sync reports failures to the caller", func(t *testing.T) {
		sender := new(mocks.Sender)
		sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()
		services, _ := newServices(t, &config.Config{SendMode: "sync", SCADOfficeID: "scad-office"}, sender, nil)

		result, err := services.Lifecycle.CreateEntity(context.Background(), company, registration())

		require.NoError(t, err)
		require.Len(t, result.Warnings, 1)
		var failure *domain.SendFailure
		assert.True(t, errors.As(result.Warnings[0], &failure))
		sender.AssertExpectations(t)
	})

	t.Run("Async sends in the background", func(t *testing.T) {
		sender := new(mocks.Sender)
		sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()
		services, _ := newServices(t, &config.Config{SendMode: "async", SCADOfficeID: "scad-office"}, sender, nil)

		result, err := services.Lifecycle.CreateEntity(context.Background(), company, registration())
		require.NoError(t, err)
		assert.Empty(t, result.Warnings)

		services.Dispatcher.Wait()
		sender.AssertExpectations(t)
	})
}

func TestNewServices_CacheBackend(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	ctx := context.Background()

	t.Run("None ignores the client", func(t *testing.T) {
		services, _ := newServices(t, &config.Config{CacheBackend: "none", DashboardCacheTTL: time.Minute}, new(mocks.Sender), client)

		assert.NoError(t, services.Dashboard.Invalidate(ctx, company))
	})

	t.Run("Redis uses the client", func(t *testing.T) {
		services, _ := newServices(t, &config.Config{CacheBackend: "redis", DashboardCacheTTL: time.Minute}, new(mocks.Sender), client)

		assert.Error(t, services.Dashboard.Invalidate(ctx, company))

		stats, err := services.Dashboard.GetStats(ctx, company)
		require.NoError(t, err)
		assert.Zero(t, stats.UnreadNotifications)
	})
}
