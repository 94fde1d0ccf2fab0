package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// uploadFormImage stores the optional "image" form file on Cloudinary and
// returns its URL. No file attached means no image; that is not an error.
func (h *Handler) uploadFormImage(ctx context.Context, c *gin.Context, folder string) (string, error) {
	file, _, err := c.Request.FormFile("image")
	if err != nil {
		return "", nil
	}
	defer file.Close()

	cld, err := cloudinary.NewFromURL(h.cfg.CloudinaryURL)
	if err != nil {
		return "", err
	}

	result, err := cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:         "forkful/" + folder,
		PublicID:       primitive.NewObjectID().Hex(),
		Transformation: "c_limit,w_800,h_800,q_auto",
	})
	if err != nil {
		return "", err
	}

	return result.SecureURL, nil
}

// UploadImage is the standalone upload endpoint for clients that attach the
// resulting URL to a later request instead of sending multipart to the
// create endpoints.
func (h *Handler) UploadImage(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := c.Request.ParseMultipartForm(10 << 20); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse form data"})
		return
	}

	url, err := h.uploadFormImage(ctx, c, "uploads")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return
	}
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}
