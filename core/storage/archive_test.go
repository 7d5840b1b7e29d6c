package storage

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"customer-merger/core/storage/mocks"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func fixedArchiver(client Client) *Archiver {
	a := NewArchiver(client, "archive", "merge")
	a.now = func() time.Time { return time.Date(2024, 3, 9, 7, 5, 1, 0, time.UTC) }
	return a
}

func TestArchiver_Key(t *testing.T) {
	a := fixedArchiver(nil)
	assert.Equal(t, "merge/2024/03/09/070501-report.json", a.Key("report"))
}

func TestArchiver_Save(t *testing.T) {
	client := new(mocks.Client)
	a := fixedArchiver(client)

	var body []byte
	client.On("PutObject", mock.Anything, "archive", "merge/2024/03/09/070501-report.json", mock.Anything, int64(13), mock.Anything).
		Run(func(args mock.Arguments) {
			body, _ = io.ReadAll(args.Get(3).(io.Reader))
		}).
		Return(minio.UploadInfo{}, nil)

	key, err := a.Save(context.Background(), "report", map[string]int{"merged": 3})
	require.NoError(t, err)
	assert.Equal(t, "merge/2024/03/09/070501-report.json", key)
	assert.JSONEq(t, `{"merged":3}`, string(body))
	client.AssertExpectations(t)
}

func TestArchiver_SaveError(t *testing.T) {
	client := new(mocks.Client)
	client.On("PutObject", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(minio.UploadInfo{}, errors.New("denied"))

	_, err := fixedArchiver(client).Save(context.Background(), "report", 1)
	assert.ErrorContains(t, err, "denied")
}

func TestArchiver_EnsureBucket(t *testing.T) {
	t.Run("Exists", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "archive").Return(true, nil)
		assert.NoError(t, fixedArchiver(client).EnsureBucket(context.Background()))
		client.AssertNotCalled(t, "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Creates", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "archive").Return(false, nil)
		client.On("MakeBucket", mock.Anything, "archive", mock.Anything).Return(nil)
		assert.NoError(t, fixedArchiver(client).EnsureBucket(context.Background()))
		client.AssertExpectations(t)
	})

	t.Run("CheckFails", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "archive").Return(false, errors.New("offline"))
		assert.ErrorContains(t, fixedArchiver(client).EnsureBucket(context.Background()), "offline")
	})
}

func TestArchiver_Nil(t *testing.T) {
	var a *Archiver
	key, err := a.Save(context.Background(), "report", 1)
	assert.NoError(t, err)
	assert.Empty(t, key)
	assert.NoError(t, a.EnsureBucket(context.Background()))
}
