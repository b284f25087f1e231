package usecase

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
	"github.com/rocketscienceinc/tictactoe-client/internal/protocol"
)

type mockLink struct {
	mock.Mock
}

func (that *mockLink) Send(request protocol.Request) error {
	args := that.Called(request)

	return args.Error(0)
}

func (that *mockLink) Receive() (protocol.Response, error) {
	args := that.Called()

	response, _ := args.Get(0).(protocol.Response)

	return response, args.Error(1)
}

type mockSessionRepo struct {
	mock.Mock
}

func (that *mockSessionRepo) Save(ctx context.Context, snapshot entity.Snapshot) error {
	args := that.Called(ctx, snapshot)

	return args.Error(0)
}

func (that *mockSessionRepo) Load(ctx context.Context) (entity.Snapshot, error) {
	args := that.Called(ctx)

	return args.Get(0).(entity.Snapshot), args.Error(1)
}

type mockHost struct {
	mock.Mock
}

func (that *mockHost) Refresh(game *entity.Game) {
	that.Called(game)
}

func (that *mockHost) Notify(message string) {
	that.Called(message)
}

func (that *mockHost) SetExitEnabled(enabled bool) {
	that.Called(enabled)
}
