package api

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// Players pick subtitle parsers by content type.
var subtitleTypes = map[string]string{
	".vtt": "text/vtt",
	".srt": "text/plain",
}

type limitedFile struct {
	io.Reader
	io.Closer
}

// StreamFile serves a media file from the shared root. A single byte range
// is answered with 206 so players can seek; other range forms get the whole
// file.
func (s *HTTPServer) StreamFile(c *fiber.Ctx) error {
	full, err := resolve(s.root, c.Params("*"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "Not found"})
	}

	info, err := s.fs.Stat(full)
	if err != nil || !info.Mode().IsRegular() {
		return c.Status(fiber.StatusNotFound).JSON(errorResponse{Error: "Not found"})
	}
	size := info.Size()

	ext := strings.ToLower(filepath.Ext(full))
	if ct, ok := subtitleTypes[ext]; ok {
		c.Set(fiber.HeaderContentType, ct)
	} else {
		c.Type(strings.TrimPrefix(ext, "."))
	}
	c.Set(fiber.HeaderAcceptRanges, "bytes")

	var start, length int64 = 0, size
	partial := false
	if c.Get(fiber.HeaderRange) != "" {
		r, err := c.Range(int(size))
		switch {
		case errors.Is(err, fiber.ErrRangeUnsatisfiable):
			c.Set(fiber.HeaderContentRange, fmt.Sprintf("bytes */%d", size))
			return c.SendStatus(fiber.StatusRequestedRangeNotSatisfiable)
		case err == nil && r.Type == "bytes" && len(r.Ranges) == 1:
			start = int64(r.Ranges[0].Start)
			length = int64(r.Ranges[0].End) - start + 1
			partial = true
		}
	}

	f, err := s.fs.Open(full)
	if err != nil {
		return err
	}

	if !partial {
		return c.SendStream(f, int(size))
	}

	if _, err := f.Seek(start, io.SeekStart); err != nil {
		_ = f.Close()
		return err
	}
	c.Status(fiber.StatusPartialContent)
	c.Set(fiber.HeaderContentRange, fmt.Sprintf("bytes %d-%d/%d", start, start+length-1, size))
	return c.SendStream(limitedFile{Reader: io.LimitReader(f, length), Closer: f}, int(length))
}
