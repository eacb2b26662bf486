package api

import (
	"errors"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/skip2/go-qrcode"

	"github.com/dmitrijs2005/moviebox/internal/common"
)

type startResponse struct {
	JobID string `json:"job_id"`
}

type statusResponse struct {
	Status   string `json:"status"`
	Progress int    `json:"progress"`
}

func (s *HTTPServer) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// QRCode renders the public URL as a PNG so phones can join quickly.
func (s *HTTPServer) QRCode(c *fiber.Ctx) error {
	png, err := qrcode.Encode(s.publicURL, qrcode.Medium, 256)
	if err != nil {
		return err
	}
	c.Type("png")
	return c.Send(png)
}

func (s *HTTPServer) StartExport(c *fiber.Ctx) error {
	ctx := c.UserContext()

	target, err := resolve(s.root, c.Params("*"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "Invalid path"})
	}

	id, err := s.exports.Start(ctx, target)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "Path not found"})
		case errors.Is(err, common.ErrInvalidPath):
			return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "Not a directory"})
		case errors.Is(err, common.ErrBusy):
			return c.Status(fiber.StatusServiceUnavailable).JSON(errorResponse{Error: "Too many exports, try again later"})
		}
		return err
	}

	return c.JSON(startResponse{JobID: id})
}

func (s *HTTPServer) ExportStatus(c *fiber.Ctx) error {
	job, err := s.exports.Status(c.Params("id"))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "Job not found"})
		}
		return err
	}

	return c.JSON(statusResponse{Status: string(job.Status), Progress: job.Progress})
}

// DownloadExport streams a finished archive once. The job and its archive
// are released when the response body has been written.
func (s *HTTPServer) DownloadExport(c *fiber.Ctx) error {
	art, err := s.exports.Retrieve(c.UserContext(), c.Params("id"))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "Job not found"})
		case errors.Is(err, common.ErrNotReady):
			return c.Status(fiber.StatusConflict).JSON(errorResponse{Error: "Job not ready"})
		}
		return err
	}

	c.Attachment(art.Name)
	return c.SendStream(art, int(art.Size))
}

func (s *HTTPServer) Metadata(c *fiber.Ctx) error {
	name := c.Query("file")
	if name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "file is required"})
	}

	folder, err := resolve(s.root, c.Query("path"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errorResponse{Error: "Invalid path"})
	}

	isDir, _ := strconv.ParseBool(c.Query("is_dir"))

	rec := s.meta.Get(c.UserContext(), name, folder, isDir)
	return c.JSON(rec)
}

// MetadataImage serves cached artwork. Only files directly inside a
// metadata directory are reachable through this route.
func (s *HTTPServer) MetadataImage(c *fiber.Ctx) error {
	rel := c.Params("*")
	if filepath.Base(filepath.Dir(filepath.FromSlash(rel))) != common.MetaDirName {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "Not found"})
	}

	full, err := resolve(s.root, rel)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "Not found"})
	}

	info, err := s.fs.Stat(full)
	if err != nil || !info.Mode().IsRegular() {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "Not found"})
	}

	f, err := s.fs.Open(full)
	if err != nil {
		return err
	}

	c.Type(strings.TrimPrefix(filepath.Ext(full), "."))
	return c.SendStream(f, int(info.Size()))
}
