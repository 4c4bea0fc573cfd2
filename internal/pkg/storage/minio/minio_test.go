package minio

import (
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectURL(t *testing.T) {
	core, err := minio.New("localhost:9000", &minio.Options{Creds: credentials.NewStaticV4("k", "s", "")})
	require.NoError(t, err)

	c := &Client{core: core, bucket: "media"}
	assert.Equal(t, "http://localhost:9000/media/avatars/u1/1.png", c.objectURL("/avatars/u1/1.png"))

	c.publicURL = "https://cdn.example.com/"
	assert.Equal(t, "https://cdn.example.com/avatars/u1/1.png", c.objectURL("avatars/u1/1.png"))
}
