package storage

import (
	"encoding/json"
	"io"
	"os"
)

type ExportData struct {
	Run     RunMetadata        `json:"run"`
	History []GenerationRecord `json:"history"`
}

func ExportJSON(w io.Writer, meta *RunMetadata, history []GenerationRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{Run: *meta, History: history})
}

func ExportJSONFile(path string, meta *RunMetadata, history []GenerationRecord) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return ExportJSON(f, meta, history)
}
