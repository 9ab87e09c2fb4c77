package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// DataDirs is a throwaway data directory laid out like the collectors write it.
type DataDirs struct {
	Root  string
	Trend string
	Blog  string
	News  string
}

// NewDataDirs creates datalab/, blog/ and news/ under a fresh temp dir.
func NewDataDirs(t *testing.T) DataDirs {
	t.Helper()

	root := t.TempDir()
	d := DataDirs{
		Root:  root,
		Trend: filepath.Join(root, "datalab"),
		Blog:  filepath.Join(root, "blog"),
		News:  filepath.Join(root, "news"),
	}
	for _, dir := range []string{d.Trend, d.Blog, d.News} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("create %s: %v", dir, err)
		}
	}
	return d
}

// WriteCSV writes lines joined by newlines to dir/name and returns the path.
func WriteCSV(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// SampleTrendCSV is a small trend export with three days.
var SampleTrendCSV = []string{
	"period,ratio",
	"2024-01-01,10.5",
	"2024-01-02,55",
	"2024-01-03,100",
}

// SampleBlogCSV is a small blog export; the last row has an unusable postdate.
var SampleBlogCSV = []string{
	"title,link,description,bloggername,bloggerlink,postdate",
	"first review,https://blog.example/1,good,alice,https://blog.example/alice,20240101",
	"second review,https://blog.example/2,meh,bob,https://blog.example/bob,20240102",
	"odd review,https://blog.example/3,?,carol,https://blog.example/carol,2024-01-03",
}

// SampleNewsCSV is a small news export with RFC 1123 publication dates.
var SampleNewsCSV = []string{
	"title,originallink,link,description,pubDate",
	"launch,https://news.example/o/1,https://news.example/1,new show,\"Mon, 01 Jan 2024 09:30:00 +0900\"",
	"ratings,https://news.example/o/2,https://news.example/2,numbers,\"Tue, 02 Jan 2024 23:10:00 +0900\"",
}
