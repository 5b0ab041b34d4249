package service

import (
	"context"

	"github.com/davinrkh/finbook/internal/domain/entity"
)

// Hand-rolled mocks with overridable function fields. Tests set only the
// calls they expect; anything else panics on a nil function, which is the
// failure we want.

type mockTxManager struct {
	calls int
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.calls++
	return fn(ctx)
}

type mockTransactionRepo struct {
	createFn  func(ctx context.Context, txn *entity.Transaction) error
	getByIDFn func(ctx context.Context, id int64) (*entity.Transaction, error)
	listFn    func(ctx context.Context) ([]*entity.Transaction, error)
}

func (m *mockTransactionRepo) Create(ctx context.Context, txn *entity.Transaction) error {
	return m.createFn(ctx, txn)
}

func (m *mockTransactionRepo) GetByID(ctx context.Context, id int64) (*entity.Transaction, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockTransactionRepo) List(ctx context.Context) ([]*entity.Transaction, error) {
	return m.listFn(ctx)
}

type mockReimbursementRepo struct {
	createFn          func(ctx context.Context, r *entity.Reimbursement) error
	getByIDFn         func(ctx context.Context, id int64) (*entity.Reimbursement, error)
	listFn            func(ctx context.Context) ([]*entity.Reimbursement, error)
	listByRequestorFn func(ctx context.Context, userID int64) ([]*entity.Reimbursement, error)
	listByStatusFn    func(ctx context.Context, status entity.ReimbursementStatus) ([]*entity.Reimbursement, error)
	updateFn          func(ctx context.Context, r *entity.Reimbursement) error
	updateStatusIfFn  func(ctx context.Context, id int64, expected, next entity.ReimbursementStatus, proofRef, reason string) (bool, error)
}

func (m *mockReimbursementRepo) Create(ctx context.Context, r *entity.Reimbursement) error {
	return m.createFn(ctx, r)
}

func (m *mockReimbursementRepo) GetByID(ctx context.Context, id int64) (*entity.Reimbursement, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockReimbursementRepo) List(ctx context.Context) ([]*entity.Reimbursement, error) {
	return m.listFn(ctx)
}

func (m *mockReimbursementRepo) ListByRequestor(ctx context.Context, userID int64) ([]*entity.Reimbursement, error) {
	return m.listByRequestorFn(ctx, userID)
}

func (m *mockReimbursementRepo) ListByStatus(ctx context.Context, status entity.ReimbursementStatus) ([]*entity.Reimbursement, error) {
	return m.listByStatusFn(ctx, status)
}

func (m *mockReimbursementRepo) Update(ctx context.Context, r *entity.Reimbursement) error {
	return m.updateFn(ctx, r)
}

func (m *mockReimbursementRepo) UpdateStatusIf(ctx context.Context, id int64, expected, next entity.ReimbursementStatus, proofRef, reason string) (bool, error) {
	return m.updateStatusIfFn(ctx, id, expected, next, proofRef, reason)
}

type mockUserRepo struct {
	createFn        func(ctx context.Context, u *entity.User) error
	getByIDFn       func(ctx context.Context, id int64) (*entity.User, error)
	getByUsernameFn func(ctx context.Context, username string) (*entity.User, error)
	listFn          func(ctx context.Context) ([]*entity.User, error)
	updateFn        func(ctx context.Context, u *entity.User) error
}

func (m *mockUserRepo) Create(ctx context.Context, u *entity.User) error {
	return m.createFn(ctx, u)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockUserRepo) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return m.getByUsernameFn(ctx, username)
}

func (m *mockUserRepo) List(ctx context.Context) ([]*entity.User, error) {
	return m.listFn(ctx)
}

func (m *mockUserRepo) Update(ctx context.Context, u *entity.User) error {
	return m.updateFn(ctx, u)
}

type mockNotificationRepo struct {
	createFn      func(ctx context.Context, n *entity.Notification) error
	listForUserFn func(ctx context.Context, userID int64) ([]*entity.Notification, error)
	listAllFn     func(ctx context.Context) ([]*entity.Notification, error)
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *entity.Notification) error {
	return m.createFn(ctx, n)
}

func (m *mockNotificationRepo) ListForUser(ctx context.Context, userID int64) ([]*entity.Notification, error) {
	return m.listForUserFn(ctx, userID)
}

func (m *mockNotificationRepo) ListAll(ctx context.Context) ([]*entity.Notification, error) {
	return m.listAllFn(ctx)
}

type mockActivityLogRepo struct {
	createFn func(ctx context.Context, e *entity.ActivityLog) error
	listFn   func(ctx context.Context, limit, offset int) ([]*entity.ActivityLog, error)
}

func (m *mockActivityLogRepo) Create(ctx context.Context, e *entity.ActivityLog) error {
	return m.createFn(ctx, e)
}

func (m *mockActivityLogRepo) List(ctx context.Context, limit, offset int) ([]*entity.ActivityLog, error) {
	return m.listFn(ctx, limit, offset)
}

type mockCategoryRepo struct {
	listFn    func(ctx context.Context) ([]*entity.Category, error)
	replaceFn func(ctx context.Context, names []string) error
}

func (m *mockCategoryRepo) List(ctx context.Context) ([]*entity.Category, error) {
	return m.listFn(ctx)
}

func (m *mockCategoryRepo) Replace(ctx context.Context, names []string) error {
	return m.replaceFn(ctx, names)
}

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

func adminUser() *entity.User {
	return &entity.User{ID: 1, Name: "Admin", Username: "admin", Role: entity.RoleAdmin}
}

func employeeUser(id int64) *entity.User {
	return &entity.User{ID: id, Name: "Employee", Username: "employee", Role: entity.RoleEmployee}
}
