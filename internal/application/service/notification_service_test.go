package service

import (
	"context"
	"testing"

	"github.com/davinrkh/finbook/internal/apperr"
	"github.com/davinrkh/finbook/internal/domain/entity"
)

func TestComposeAdminOnly(t *testing.T) {
	svc := NewNotificationService(&mockNotificationRepo{}, nopLogger{})

	_, err := svc.Compose(context.Background(), employeeUser(7), nil, "hello", entity.NotificationInfo)
	if !apperr.IsKind(err, apperr.KindAuthorization) {
		t.Errorf("Compose() error = %v, want authorization error", err)
	}
}

func TestComposeValidation(t *testing.T) {
	svc := NewNotificationService(&mockNotificationRepo{}, nopLogger{})

	if _, err := svc.Compose(context.Background(), adminUser(), nil, "", entity.NotificationInfo); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("empty message error = %v, want validation", err)
	}
	if _, err := svc.Compose(context.Background(), adminUser(), nil, "hi", "urgent"); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("unknown type error = %v, want validation", err)
	}
}

func TestComposeBroadcastAndTargeted(t *testing.T) {
	var created *entity.Notification
	repo := &mockNotificationRepo{
		createFn: func(ctx context.Context, n *entity.Notification) error {
			created = n
			return nil
		},
	}
	svc := NewNotificationService(repo, nopLogger{})

	n, err := svc.Compose(context.Background(), adminUser(), nil, "payroll is out", entity.NotificationSuccess)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if !n.IsBroadcast() || created.TargetUserID != nil {
		t.Error("nil target should create a broadcast")
	}

	target := int64(7)
	n, err = svc.Compose(context.Background(), adminUser(), &target, "see me", entity.NotificationWarning)
	if err != nil {
		t.Fatalf("Compose() error = %v", err)
	}
	if n.IsBroadcast() || *created.TargetUserID != 7 {
		t.Error("targeted notification should keep its target")
	}
}

func TestListAllAdminOnly(t *testing.T) {
	repo := &mockNotificationRepo{
		listAllFn: func(ctx context.Context) ([]*entity.Notification, error) {
			return []*entity.Notification{{ID: 1}}, nil
		},
	}
	svc := NewNotificationService(repo, nopLogger{})

	if _, err := svc.ListAll(context.Background(), employeeUser(7)); !apperr.IsKind(err, apperr.KindAuthorization) {
		t.Errorf("ListAll() error = %v, want authorization", err)
	}
	all, err := svc.ListAll(context.Background(), adminUser())
	if err != nil || len(all) != 1 {
		t.Errorf("ListAll() = %v, %v", all, err)
	}
}
