package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/gravsim/internal/dynamo"
)

type ExportBody struct {
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

type ExportFrame struct {
	Step   int          `json:"step"`
	Bodies []ExportBody `json:"bodies"`
}

type ExportData struct {
	RunMetadata
	Frames []ExportFrame `json:"frames"`
}

func ExportJSON(w io.Writer, meta RunMetadata, snaps []dynamo.Snapshot) error {
	data := ExportData{
		RunMetadata: meta,
		Frames:      make([]ExportFrame, len(snaps)),
	}

	for i, snap := range snaps {
		frame := ExportFrame{Step: snap.Step, Bodies: make([]ExportBody, len(snap.Bodies))}
		for j, b := range snap.Bodies {
			frame.Bodies[j] = ExportBody{X: b.Position.X, Y: b.Position.Y, VX: b.Velocity.X, VY: b.Velocity.Y}
		}
		data.Frames[i] = frame
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
