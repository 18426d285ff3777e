package main

import (
	"errors"
	"io"
	"strings"
	"time"

	"bringup-go/errcode"
	"bringup-go/services/board"
)

const maxLine = 256

// waitBanner reads r until a line starting with board.BannerPrefix arrives
// or deadline passes. Reads that return no data, including io.EOF from a
// timed-out port, are retried. Other lines seen first are passed to skip.
func waitBanner(r io.Reader, deadline time.Time, now func() time.Time, skip func(string)) (string, error) {
	var line []byte
	buf := make([]byte, 64)
	for now().Before(deadline) {
		n, err := r.Read(buf)
		for _, b := range buf[:n] {
			switch b {
			case '\r':
			case '\n':
				s := string(line)
				line = line[:0]
				if strings.HasPrefix(s, board.BannerPrefix) {
					return s, nil
				}
				if s != "" && skip != nil {
					skip(s)
				}
			default:
				if len(line) < maxLine {
					line = append(line, b)
				}
			}
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
	}
	return "", errcode.New(errcode.Timeout, "probe", "no banner before deadline")
}
