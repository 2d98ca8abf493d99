package mock

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/btecbytes/bytesapi/internal/database"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

var _ database.DB = (*MockDB)(nil)

// MockDB is an in-memory implementation of database.DB for testing.
// Setting one of the error fields makes the matching methods fail.
type MockDB struct {
	mu sync.RWMutex

	users      map[uint]*database.User
	nextUserID uint

	categories     map[uint]*database.Category
	nextCategoryID uint

	items      map[uint]*database.Item
	nextItemID uint

	wishlists      map[uint]*database.Wishlist
	nextWishlistID uint

	apiKeys   map[string]*database.APIKey
	nextKeyID uint

	// Error simulation
	UserError     error
	CategoryError error
	ItemError     error
	WishlistError error
	APIKeyError   error
	StatsError    error
}

// NewMockDB creates a new MockDB instance.
func NewMockDB() *MockDB {
	return &MockDB{
		users:          make(map[uint]*database.User),
		nextUserID:     1,
		categories:     make(map[uint]*database.Category),
		nextCategoryID: 1,
		items:          make(map[uint]*database.Item),
		nextItemID:     1,
		wishlists:      make(map[uint]*database.Wishlist),
		nextWishlistID: 1,
		apiKeys:        make(map[string]*database.APIKey),
		nextKeyID:      1,
	}
}

func notFound(entity string, key any) error {
	return &database.NotFoundError{Entity: entity, Key: key}
}

func sortedValues[T any](m map[uint]*T) []T {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return lo.Map(keys, func(k uint, _ int) T { return *m[k] })
}

func (m *MockDB) CreateUser(_ context.Context, user *database.User, assignment *database.RoleAssignment) (*database.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UserError != nil {
		return nil, m.UserError
	}

	email := database.NormalizeEmail(user.Email)
	for _, u := range m.users {
		if u.Email == email {
			return nil, database.ErrIntegrity
		}
	}

	created := *user
	created.ID = m.nextUserID
	created.Email = email
	created.CreatedAt = time.Now()
	created.LastEdit = created.CreatedAt
	if assignment != nil {
		setRole(&created, *assignment)
	}
	m.users[created.ID] = &created
	m.nextUserID++

	result := created
	return &result, nil
}

func setRole(user *database.User, assignment database.RoleAssignment) {
	switch assignment.Role {
	case database.RoleAdmin:
		user.Admin = database.NewAdmin(user.ID, assignment.AccessRank)
	case database.RoleStudent:
		user.Student = database.NewStudent(user.ID)
	case database.RoleTeacher:
		user.Teacher = database.NewTeacher(user.ID, assignment.Subject)
	}
}

func (m *MockDB) GetUserByID(_ context.Context, id uint) (*database.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.UserError != nil {
		return nil, m.UserError
	}
	user, ok := m.users[id]
	if !ok {
		return nil, notFound("User", id)
	}
	result := *user
	return &result, nil
}

func (m *MockDB) GetUserByEmail(_ context.Context, email string) (*database.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.UserError != nil {
		return nil, m.UserError
	}
	email = database.NormalizeEmail(email)
	for _, user := range m.users {
		if user.Email == email {
			result := *user
			return &result, nil
		}
	}
	return nil, notFound("User", email)
}

func (m *MockDB) GetAllUsers(_ context.Context) ([]database.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.UserError != nil {
		return nil, m.UserError
	}
	return sortedValues(m.users), nil
}

func (m *MockDB) AssignRole(_ context.Context, userID uint, assignment database.RoleAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UserError != nil {
		return m.UserError
	}
	user, ok := m.users[userID]
	if !ok {
		return notFound("User", userID)
	}
	if user.Role() != database.RoleNone {
		return database.ErrRoleAlreadyAssigned
	}
	setRole(user, assignment)
	return nil
}

func (m *MockDB) ResolveRole(_ context.Context, userID uint) (database.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.UserError != nil {
		return database.RoleNone, m.UserError
	}
	user, ok := m.users[userID]
	if !ok {
		return database.RoleNone, nil
	}
	return user.Role(), nil
}

func (m *MockDB) CreateCategory(_ context.Context, category *database.Category) (*database.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CategoryError != nil {
		return nil, m.CategoryError
	}
	if _, err := m.findCategory(category.URLExt); err == nil {
		return nil, database.ErrIntegrity
	}
	created := *category
	created.ID = m.nextCategoryID
	m.categories[created.ID] = &created
	m.nextCategoryID++
	result := created
	return &result, nil
}

func (m *MockDB) findCategory(urlExt string) (*database.Category, error) {
	for _, category := range m.categories {
		if category.URLExt == urlExt {
			return category, nil
		}
	}
	return nil, notFound("Category", urlExt)
}

// withItems returns a copy of category with its item ids attached.
func (m *MockDB) withItems(category database.Category) database.Category {
	category.Items = lo.Filter(sortedValues(m.items), func(i database.Item, _ int) bool {
		return i.CategoryID == category.ID
	})
	return category
}

func (m *MockDB) GetAllCategories(_ context.Context) ([]database.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.CategoryError != nil {
		return nil, m.CategoryError
	}
	return lo.Map(sortedValues(m.categories), func(c database.Category, _ int) database.Category {
		return m.withItems(c)
	}), nil
}

func (m *MockDB) GetCategoryByURLExt(_ context.Context, urlExt string) (*database.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.CategoryError != nil {
		return nil, m.CategoryError
	}
	category, err := m.findCategory(urlExt)
	if err != nil {
		return nil, err
	}
	result := m.withItems(*category)
	return &result, nil
}

func (m *MockDB) UpdateCategory(_ context.Context, urlExt string, update database.CategoryUpdate) (*database.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CategoryError != nil {
		return nil, m.CategoryError
	}
	category, err := m.findCategory(urlExt)
	if err != nil {
		return nil, err
	}
	if update.IsEmpty() {
		return nil, database.ErrNoUpdates
	}
	if update.Title != nil {
		category.Title = *update.Title
	}
	if update.URLExt != nil {
		category.URLExt = *update.URLExt
	}
	if update.Image != nil {
		category.Image = update.Image
	}
	if update.ImageFormat != nil {
		category.ImageFormat = *update.ImageFormat
	}
	if update.Snippet != nil {
		category.Snippet = *update.Snippet
	}
	if update.Description != nil {
		category.Description = *update.Description
	}
	result := m.withItems(*category)
	return &result, nil
}

func (m *MockDB) DeleteCategory(_ context.Context, urlExt string) (*database.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CategoryError != nil {
		return nil, m.CategoryError
	}
	category, err := m.findCategory(urlExt)
	if err != nil {
		return nil, err
	}
	result := m.withItems(*category)
	for _, item := range result.Items {
		m.deleteItem(item.ID)
	}
	delete(m.categories, category.ID)
	return &result, nil
}

func (m *MockDB) CreateItem(_ context.Context, item *database.Item) (*database.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ItemError != nil {
		return nil, m.ItemError
	}
	category, ok := m.categories[item.CategoryID]
	if !ok {
		return nil, notFound("Category", item.CategoryID)
	}
	created := *item
	created.ID = m.nextItemID
	created.Category = &database.Category{Base: category.Base, URLExt: category.URLExt}
	m.items[created.ID] = &created
	m.nextItemID++
	result := created
	return &result, nil
}

func (m *MockDB) GetAllItems(_ context.Context) ([]database.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ItemError != nil {
		return nil, m.ItemError
	}
	return sortedValues(m.items), nil
}

func (m *MockDB) GetItemByID(_ context.Context, id uint) (*database.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.ItemError != nil {
		return nil, m.ItemError
	}
	item, ok := m.items[id]
	if !ok {
		return nil, notFound("Item", id)
	}
	result := *item
	return &result, nil
}

func (m *MockDB) DeleteItem(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ItemError != nil {
		return m.ItemError
	}
	if _, ok := m.items[id]; !ok {
		return notFound("Item", id)
	}
	m.deleteItem(id)
	return nil
}

func (m *MockDB) deleteItem(id uint) {
	for wid, wishlist := range m.wishlists {
		if wishlist.ItemID == id {
			delete(m.wishlists, wid)
		}
	}
	delete(m.items, id)
}

func (m *MockDB) CreateWishlist(_ context.Context, wishlist *database.Wishlist) (*database.Wishlist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WishlistError != nil {
		return nil, m.WishlistError
	}
	item, ok := m.items[wishlist.ItemID]
	if !ok {
		return nil, notFound("Item", wishlist.ItemID)
	}
	if _, ok := m.users[wishlist.UserID]; !ok {
		return nil, notFound("User", wishlist.UserID)
	}
	for _, w := range m.wishlists {
		if w.ItemID == wishlist.ItemID || w.UserID == wishlist.UserID {
			return nil, database.ErrIntegrity
		}
	}
	created := *wishlist
	created.ID = m.nextWishlistID
	created.CreatedAt = time.Now()
	created.LastEdit = created.CreatedAt
	created.Item = &database.Item{Base: item.Base, Title: item.Title, Snippet: item.Snippet, Price: item.Price}
	m.wishlists[created.ID] = &created
	m.nextWishlistID++
	result := created
	return &result, nil
}

func (m *MockDB) GetAllWishlists(_ context.Context) ([]database.Wishlist, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.WishlistError != nil {
		return nil, m.WishlistError
	}
	return sortedValues(m.wishlists), nil
}

func (m *MockDB) GetWishlistByID(_ context.Context, id uint) (*database.Wishlist, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.WishlistError != nil {
		return nil, m.WishlistError
	}
	wishlist, ok := m.wishlists[id]
	if !ok {
		return nil, notFound("Wishlist", id)
	}
	result := *wishlist
	return &result, nil
}

func (m *MockDB) CreateAPIKey(_ context.Context) (*database.APIKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.APIKeyError != nil {
		return nil, m.APIKeyError
	}
	key := &database.APIKey{Key: uuid.NewString(), CreatedAt: time.Now()}
	key.ID = m.nextKeyID
	m.nextKeyID++
	m.apiKeys[key.Key] = key
	result := *key
	return &result, nil
}

func (m *MockDB) GetAPIKeys(_ context.Context) ([]database.APIKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.APIKeyError != nil {
		return nil, m.APIKeyError
	}
	keys := lo.Map(lo.Values(m.apiKeys), func(k *database.APIKey, _ int) database.APIKey { return *k })
	slices.SortFunc(keys, func(a, b database.APIKey) int { return cmp.Compare(a.ID, b.ID) })
	return keys, nil
}

func (m *MockDB) GetAPIKey(_ context.Context, key string) (*database.APIKey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.APIKeyError != nil {
		return nil, m.APIKeyError
	}
	apiKey, ok := m.apiKeys[key]
	if !ok {
		return nil, notFound("APIKey", key)
	}
	result := *apiKey
	return &result, nil
}

func (m *MockDB) ExpireAPIKey(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.APIKeyError != nil {
		return m.APIKeyError
	}
	apiKey, ok := m.apiKeys[key]
	if !ok {
		return notFound("APIKey", key)
	}
	apiKey.Expired = true
	return nil
}

func (m *MockDB) ExpireAPIKeysCreatedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.APIKeyError != nil {
		return 0, m.APIKeyError
	}
	var expired int64
	for _, apiKey := range m.apiKeys {
		if !apiKey.Expired && apiKey.CreatedAt.Before(cutoff) {
			apiKey.Expired = true
			expired++
		}
	}
	return expired, nil
}

func (m *MockDB) GetStats(_ context.Context) (*database.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.StatsError != nil {
		return nil, m.StatsError
	}
	stats := &database.Stats{
		Categories: int64(len(m.categories)),
		Items:      int64(len(m.items)),
		Wishlists:  int64(len(m.wishlists)),
		APIKeys:    int64(len(m.apiKeys)),
	}
	for _, user := range m.users {
		stats.Users++
		switch user.Role() {
		case database.RoleAdmin:
			stats.Admins++
		case database.RoleStudent:
			stats.Students++
		case database.RoleTeacher:
			stats.Teachers++
		}
	}
	for _, key := range m.apiKeys {
		if !key.Expired {
			stats.ActiveAPIKeys++
		}
	}
	return stats, nil
}

func (m *MockDB) Close() error {
	return nil
}
