// home_test.go - Tests for upload and viewer handlers
// Run with: go test ./...

package handlers

import (
	"bytes"          // For building multipart bodies
	"context"        // For history lookups
	"html"           // For unescaping rendered attributes
	"mime/multipart" // For building upload requests
	"net/http"       // HTTP status codes
	"os"             // For checking stored files
	"path/filepath"  // For expected locations
	"testing"        // Go's testing package

	"github.com/stretchr/testify/assert" // For assertions
	"github.com/stretchr/testify/require"
)

// upload posts content as the multipart field "filename"
func (b *browser) upload(t *testing.T, name string, content []byte) *http.Response {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	fw, err := mw.CreateFormFile("filename", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest("POST", "/home/postUpload", body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return b.do(req).Result()
}

func TestAnonymousUploadStoresFileAndSession(t *testing.T) {
	app := setupApp(t)
	b := app.browser()
	b.get("/upload")

	content := []byte("solid part\nendsolid part\n")
	res := b.upload(t, "part.stl", content)
	assert.Equal(t, http.StatusFound, res.StatusCode)
	assert.Equal(t, "/viewer", res.Header.Get("Location"))

	want := filepath.ToSlash(filepath.Join(app.cfg.UploadDir, "part.stl"))
	stored, err := os.ReadFile(want)
	require.NoError(t, err)
	assert.Equal(t, content, stored)

	w := b.get("/viewer")
	require.Equal(t, 200, w.Code)
	body := html.UnescapeString(w.Body.String())
	assert.Contains(t, body, `data-location="`+want+`"`) // Session holds the stored location
	assert.Contains(t, body, `data-model="/uploads/part.stl"`)

	require.Len(t, app.events.events, 1)
	event := app.events.events[0].(UploadEvent)
	assert.Equal(t, "part.stl", event.FileName)
	assert.Equal(t, want, event.Location)
	assert.Zero(t, event.UserID)

	w = b.get("/uploads/part.stl")
	assert.Equal(t, 200, w.Code)
	assert.Equal(t, content, w.Body.Bytes())
}

func TestUploadAppendsToHistory(t *testing.T) {
	app := setupApp(t)
	b := app.browser()
	b.signup(t, "maker@example.com", "secret")
	b.get("/upload")

	b.upload(t, "first.stl", []byte("one"))
	b.upload(t, `C:\models\second.stl`, []byte("two")) // Directories are stripped

	user, err := app.users.FindByEmail(context.Background(), "maker@example.com")
	require.NoError(t, err)
	user, err = app.users.FindByID(context.Background(), user.ID)
	require.NoError(t, err)

	require.Len(t, user.UploadedFiles, 2)
	assert.Equal(t, "first.stl", user.UploadedFiles[0].FileName)
	assert.Equal(t, "second.stl", user.UploadedFiles[1].FileName)
	assert.Equal(t, filepath.ToSlash(filepath.Join(app.cfg.UploadDir, "second.stl")), user.UploadedFiles[1].Location)

	w := b.get("/history")
	assert.Contains(t, w.Body.String(), "first.stl")
	assert.Contains(t, w.Body.String(), "second.stl")
}

func TestUploadSameNameLastWriterWins(t *testing.T) {
	app := setupApp(t)
	b := app.browser()
	b.get("/upload")

	b.upload(t, "part.stl", []byte("old"))
	b.upload(t, "part.stl", []byte("new"))

	stored, err := os.ReadFile(filepath.Join(app.cfg.UploadDir, "part.stl"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(stored))
}

func TestUploadRejectsMissingOrBadName(t *testing.T) {
	app := setupApp(t)
	b := app.browser()
	b.get("/upload")

	res := b.upload(t, "..", []byte("x"))
	assert.Equal(t, "/upload", res.Header.Get("Location"))
	assert.Contains(t, b.get("/upload").Body.String(), "File name is not valid.")

	w := b.post("/home/postUpload", nil)
	assert.Equal(t, "/upload", w.Header().Get("Location"))
}

func TestViewerWithoutUpload(t *testing.T) {
	app := setupApp(t)
	b := app.browser()

	w := b.get("/viewer")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/upload", w.Header().Get("Location"))
}
