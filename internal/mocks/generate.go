// Package mocks provides generated mock implementations for testing.
//
// This package uses go.uber.org/mock (gomock) to generate type-safe mocks for
// the port interfaces. To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	defer ctrl.Finish()
//	store := mocks.NewMockProfileStore(ctrl)
//	store.EXPECT().GetByID(gomock.Any(), id).Return(profile, nil)
package mocks

// Generate mock for the ProfileStore interface from internal/ports.
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=profile_store_mock.go github.com/mechlink/mechlink-api/internal/ports ProfileStore
