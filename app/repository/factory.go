package repository

import (
	"sync"

	"gorm.io/gorm"

	"github.com/aifoundry/foundry/internal/pkg/database"
)

// Factory manages repository instances and ensures they are singletons
type Factory struct {
	db    *gorm.DB
	repos *Repositories
	once  sync.Once
}

// NewFactory creates a new repository factory
func NewFactory(db *gorm.DB) *Factory {
	return &Factory{
		db: db,
	}
}

// GetRepositories returns a singleton instance of all repositories
func (f *Factory) GetRepositories() *Repositories {
	f.once.Do(func() {
		f.repos = NewRepositories(f.db)
	})
	return f.repos
}

// GetUserRepository returns the user repository instance
func (f *Factory) GetUserRepository() UserRepository {
	return f.GetRepositories().User
}

// GetOrganizationRepository returns the organization repository instance
func (f *Factory) GetOrganizationRepository() OrganizationRepository {
	return f.GetRepositories().Organization
}

// GetAPIKeyRepository returns the API key repository instance
func (f *Factory) GetAPIKeyRepository() APIKeyRepository {
	return f.GetRepositories().APIKey
}

// GetWebhookRepository returns the webhook repository instance
func (f *Factory) GetWebhookRepository() WebhookRepository {
	return f.GetRepositories().Webhook
}

var (
	globalFactory   *Factory
	globalFactoryMu sync.Mutex
)

// GetGlobalFactory returns the process-wide factory bound to the global
// database handle, creating it on first use.
func GetGlobalFactory() *Factory {
	globalFactoryMu.Lock()
	defer globalFactoryMu.Unlock()
	if globalFactory == nil {
		globalFactory = NewFactory(database.GetDB())
	}
	return globalFactory
}

// ResetGlobalFactory drops the cached factory so the next call rebinds to the
// current database handle (used by tests).
func ResetGlobalFactory() {
	globalFactoryMu.Lock()
	defer globalFactoryMu.Unlock()
	globalFactory = nil
}
