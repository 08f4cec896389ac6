// home.go - Home page, model upload and viewer
//
// Upload Flow:
// 1. Spool the multipart payload to the intake directory
// 2. Move it into durable storage under its original name
// 3. Append the file to the caller's history when logged in (best effort)
// 4. Remember the file in the session and publish an upload event
// 5. Redirect to the viewer

package handlers // Declares the package name

import ( // Import required packages
	"net/http" // HTTP status codes
	"net/url"  // Escaping model URLs
	"os"       // Intake cleanup
	"time"     // Event timestamps

	"plasticity-backend/auth"    // Session keys
	"plasticity-backend/storage" // Intake and name cleaning

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

// UploadEvent is published to MQTT after every successful upload.
type UploadEvent struct {
	FileName   string    `json:"fileName"`
	Location   string    `json:"location"`
	UserID     uint      `json:"userId,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// Index - GET /
func (h *Handler) Index(c *gin.Context) {
	h.render(c, http.StatusOK, "home.html", gin.H{"title": "Home"})
}

// GetUpload - GET /upload
func (h *Handler) GetUpload(c *gin.Context) {
	h.render(c, http.StatusOK, "upload.html", gin.H{"title": "Upload"})
}

// PostUpload - POST /home/postUpload
func (h *Handler) PostUpload(c *gin.Context) {
	header, err := c.FormFile("filename") // Multipart field "filename"
	if err != nil {
		h.flashRedirect(c, "/upload", "Choose a file to upload.")
		return
	}
	name, err := storage.CleanName(header.Filename)
	if err != nil {
		h.flashRedirect(c, "/upload", "File name is not valid.")
		return
	}

	// STEP 1: Intake
	src, err := header.Open()
	if err != nil {
		h.fail(c, err)
		return
	}
	defer src.Close()
	intake, err := storage.Spool(h.Config.IntakeDir, src)
	if err != nil {
		h.fail(c, err)
		return
	}

	// STEP 2: Durable storage, last writer wins on name collisions
	ctx := c.Request.Context()
	location, err := h.Storage.Move(ctx, intake, name)
	if err != nil {
		os.Remove(intake)
		h.fail(c, err)
		return
	}
	entry := h.Files.Entry(name, location)

	// STEP 3: History. The file is already stored, so a failure here is only logged.
	event := UploadEvent{FileName: name, Location: location, UploadedAt: entry.CreatedAt}
	if user := h.Gateway.CurrentUser(c); user != nil {
		event.UserID = user.ID
		if err := h.Files.Attach(ctx, user.ID, &entry); err != nil {
			h.Log.WithError(err).WithFields(logrus.Fields{
				"user_id":  user.ID,
				"location": location,
			}).Warn("upload stored but not added to history")
		}
	}

	// STEP 4: Session and event
	h.Gateway.SetValue(c, auth.KeyFileName, name)
	h.Gateway.SetValue(c, auth.KeyFilePath, location)
	if err := h.Events.Publish(h.Config.MQTTTopic, event); err != nil {
		h.Log.WithError(err).Warn("publish upload event")
	}

	h.Log.WithFields(logrus.Fields{"file": name, "location": location}).Info("upload stored")
	h.redirect(c, "/viewer") // STEP 5
}

// GetViewer - GET /viewer
// Shows the model last uploaded in this session.
func (h *Handler) GetViewer(c *gin.Context) {
	name := h.Gateway.Value(c, auth.KeyFileName)
	location := h.Gateway.Value(c, auth.KeyFilePath)
	if name == "" || location == "" {
		h.Gateway.Flash(c, auth.FlashInfo, "Upload a model to view it.")
		h.redirect(c, "/upload")
		return
	}

	h.render(c, http.StatusOK, "viewer.html", gin.H{
		"title":    "Viewer",
		"filename": name,
		"location": location,
		"modelURL": h.modelURL(name, location),
	})
}

// modelURL is where the browser fetches the stored model from.
func (h *Handler) modelURL(name, location string) string {
	if h.Config.StorageBackend == "s3" {
		return location
	}
	return "/uploads/" + url.PathEscape(name)
}
