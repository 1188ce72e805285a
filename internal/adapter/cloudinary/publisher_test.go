package cloudinary

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jgivc/gallerysync/internal/common"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    error
	}{
		{name: "invalid signature", message: "Invalid Signature a1b2c3", want: common.ErrAuthRejected},
		{name: "invalid api key", message: "Invalid api key 123456", want: common.ErrAuthRejected},
		{name: "authorization required", message: "Authorization required, please provide credentials", want: common.ErrAuthRejected},
		{name: "missing api key", message: "Must supply api_key", want: common.ErrAuthRejected},
		{name: "already exists", message: "Resource already exists with public_id iceland/sunset-abc123def456", want: common.ErrDuplicateAsset},
		{name: "duplicate", message: "duplicate asset detected", want: common.ErrDuplicateAsset},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := classify(tt.message)
			require.Error(t, err)
			require.ErrorIs(t, err, tt.want)
			require.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestClassifyUnknownMessageIsGeneric(t *testing.T) {
	err := classify("File size too large")
	require.Error(t, err)
	require.NotErrorIs(t, err, common.ErrAuthRejected)
	require.NotErrorIs(t, err, common.ErrDuplicateAsset)
	require.Contains(t, err.Error(), "File size too large")
}
