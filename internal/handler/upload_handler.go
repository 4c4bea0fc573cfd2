package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mycoseed/internal/middleware"
	"mycoseed/internal/service"
)

type UploadHandler struct {
	svc *service.UploadService
}

func NewUploadHandler(svc *service.UploadService) *UploadHandler {
	return &UploadHandler{svc: svc}
}

// Avatar multipart 字段 file
func (h *UploadHandler) Avatar(c *gin.Context) {
	withFile(c, func(f service.UploadFile) (*service.UploadResult, error) {
		return h.svc.UploadAvatar(c.Request.Context(), middleware.UserID(c), f)
	})
}

// PostImage multipart 字段 file、communityId、postId、index
func (h *UploadHandler) PostImage(c *gin.Context) {
	index, err := strconv.Atoi(c.PostForm("index"))
	if err != nil {
		badRequest(c)
		return
	}
	withFile(c, func(f service.UploadFile) (*service.UploadResult, error) {
		return h.svc.UploadPostImage(c.Request.Context(), c.PostForm("communityId"), middleware.UserID(c),
			c.PostForm("postId"), index, f)
	})
}

func withFile(c *gin.Context, upload func(service.UploadFile) (*service.UploadResult, error)) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "缺少文件"})
		return
	}
	if fh.Size > service.MaxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "文件不能超过5MB"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		writeError(c, err)
		return
	}
	defer f.Close()

	res, err := upload(service.UploadFile{Filename: fh.Filename, ContentType: fh.Header.Get("Content-Type"), Body: f})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
