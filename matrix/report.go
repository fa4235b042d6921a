package matrix

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"

	"github.com/minio/highwayhash"

	"github.com/viant/archconform/fsindex"
)

// digestKey mirrors this lineage's existing content-hashing key
// (inspector/graph/hash.go), reused here to fingerprint a violation report
// rather than a graph export.
var digestKey = []byte("0123456789ABCDEF0123456789ABCDEF")

// WriteReports emits violations_report.csv, file_index.csv, and a
// violations_report.sig digest of the former under dir, creating dir if
// necessary.
func WriteReports(dir string, idx *fsindex.Index, violations []Violation) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("matrix: create report dir %q: %w", dir, err)
	}

	violationsCSV, err := renderViolationsCSV(idx, violations)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "violations_report.csv"), violationsCSV, 0o644); err != nil {
		return fmt.Errorf("matrix: write violations_report.csv: %w", err)
	}

	fileIndexCSV, err := renderFileIndexCSV(idx)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "file_index.csv"), fileIndexCSV, 0o644); err != nil {
		return fmt.Errorf("matrix: write file_index.csv: %w", err)
	}

	sig, err := digest(violationsCSV)
	if err != nil {
		return fmt.Errorf("matrix: digest violations_report: %w", err)
	}
	sigText := fmt.Sprintf("%016x\n", sig)
	if err := os.WriteFile(filepath.Join(dir, "violations_report.sig"), []byte(sigText), 0o644); err != nil {
		return fmt.Errorf("matrix: write violations_report.sig: %w", err)
	}
	return nil
}

// renderViolationsCSV writes two columns (src_path, dst_path), no header,
// one line per violating CodeDep — not one per (src,dst) pair — so a
// reader can see the concrete locations that make up a violation count.
func renderViolationsCSV(idx *fsindex.Index, violations []Violation) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, v := range violations {
		srcPath, err := idx.FullPath(v.Src)
		if err != nil {
			return nil, fmt.Errorf("matrix: render report: %w", err)
		}
		dstPath, err := idx.FullPath(v.Dst)
		if err != nil {
			return nil, fmt.Errorf("matrix: render report: %w", err)
		}
		for range v.Deps {
			if err := w.Write([]string{srcPath, dstPath}); err != nil {
				return nil, fmt.Errorf("matrix: render report: %w", err)
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("matrix: render report: %w", err)
	}
	return buf.Bytes(), nil
}

func renderFileIndexCSV(idx *fsindex.Index) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	for _, e := range idx.All() {
		if err := w.Write([]string{fmt.Sprint(e.ID), e.FullPath}); err != nil {
			return nil, fmt.Errorf("matrix: render file index: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("matrix: render file index: %w", err)
	}
	return buf.Bytes(), nil
}

func digest(data []byte) (uint64, error) {
	h, err := highwayhash.New64(digestKey)
	if err != nil {
		return 0, err
	}
	if _, err := h.Write(data); err != nil {
		return 0, err
	}
	return h.Sum64(), nil
}

// WriteHeatmap renders a grayscale heatmap of the violation matrix,
// row-indexed by source file id, to path. Brightness at (col, row) scales
// with the violation count between file row and file col.
func WriteHeatmap(path string, idx *fsindex.Index, violations []Violation) error {
	n := idx.Len()
	if n == 0 {
		return fmt.Errorf("matrix: cannot render heatmap for an empty index")
	}
	img := image.NewGray(image.Rect(0, 0, n, n))
	maxCount := 1
	for _, v := range violations {
		if v.Count > maxCount {
			maxCount = v.Count
		}
	}
	for _, v := range violations {
		level := uint8(255 * v.Count / maxCount)
		if level == 0 {
			level = 1
		}
		img.SetGray(v.Dst, v.Src, color.Gray{Y: level})
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("matrix: create heatmap %q: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("matrix: encode heatmap %q: %w", path, err)
	}
	return nil
}
