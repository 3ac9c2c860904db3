package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/medkit-app/medkit/internal/scanner"
	"github.com/medkit-app/medkit/internal/usecase"
)

// scanFrame is one line of scan input. ScannerBox overrides --box for that frame.
type scanFrame struct {
	Detections []scanner.Detection `json:"detections"`
	ScannerBox *scanner.Rect       `json:"scanner_box,omitempty"`
}

func newScanCmd() *cobra.Command {
	var (
		input   string
		box     string
		format  string
		scaleX  float64
		scaleY  float64
		offsetX float64
		offsetY float64
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Confirm barcodes from a stream of detector frames",
		Long: `Reads one JSON frame per line, e.g.
  {"detections":[{"value":"4006381333931","box":{"left":20,"top":20,"right":60,"bottom":60}}]}
and reports the recognition state. A confirmed barcode is looked up in the inventory.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != "text" && format != "json" {
				return fmt.Errorf("invalid format: %s (valid values: text, json)", format)
			}
			scannerBox, err := parseRect(box)
			if err != nil {
				return err
			}

			var r io.Reader = cmd.InOrStdin()
			if input != "" && input != "-" {
				//nolint:gosec // G304: path is chosen by the operator
				f, err := os.Open(input)
				if err != nil {
					return fmt.Errorf("failed to open frames: %w", err)
				}
				defer func() {
					_ = f.Close()
				}()
				r = f
			}

			dbCtx, err := openDatabase()
			if err != nil {
				return err
			}
			defer closeDatabase(dbCtx)

			ctx, cancel := signalContext()
			defer cancel()

			session := usecase.NewScanSession(dbCtx, scanner.Config{
				ConfirmationFrames: settings.Scanner.ConfirmationFrames,
				MinAreaRatio:       settings.Scanner.MinAreaRatio,
			}, logger)
			transform := scanner.Affine(scaleX, scaleY, offsetX, offsetY)

			lines := bufio.NewScanner(r)
			lines.Buffer(make([]byte, 64*1024), 4*1024*1024)

			var last string
			lineNo := 0
			for lines.Scan() {
				if err := ctx.Err(); err != nil {
					return nil
				}
				lineNo++
				text := strings.TrimSpace(lines.Text())
				if text == "" {
					continue
				}

				var frame scanFrame
				if err := json.Unmarshal([]byte(text), &frame); err != nil {
					return fmt.Errorf("line %d: invalid frame: %w", lineNo, err)
				}
				frameBox := scannerBox
				if frame.ScannerBox != nil {
					frameBox = *frame.ScannerBox
				}

				event, emitted, err := session.HandleFrame(ctx, frame.Detections, transform, frameBox)
				if err != nil {
					return err
				}
				if !emitted {
					continue
				}

				if format == "json" {
					if err := json.NewEncoder(cmd.OutOrStdout()).Encode(event); err != nil {
						return err
					}
					continue
				}

				if s := event.State.String(); s != last {
					fmt.Fprintf(cmd.OutOrStdout(), "frame %d: %s\n", event.Frame, s)
					last = s
				}
				if event.Target != nil {
					printTarget(cmd, event.Target)
				}
			}
			if err := lines.Err(); err != nil {
				return fmt.Errorf("failed to read frames: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&input, "input", "-", "File with JSON frames, one per line (default: stdin)")
	cmd.Flags().StringVar(&box, "box", "0,0,100,100", "Scanner box in display space: left,top,right,bottom")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or json")
	cmd.Flags().Float64Var(&scaleX, "scale-x", 1, "Image-to-display scale on x")
	cmd.Flags().Float64Var(&scaleY, "scale-y", 1, "Image-to-display scale on y")
	cmd.Flags().Float64Var(&offsetX, "offset-x", 0, "Image-to-display offset on x")
	cmd.Flags().Float64Var(&offsetY, "offset-y", 0, "Image-to-display offset on y")

	return cmd
}

func printTarget(cmd *cobra.Command, target *usecase.ScanTarget) {
	out := cmd.OutOrStdout()
	switch target.Kind {
	case usecase.TargetSupply:
		fmt.Fprintf(out, "  supply %s: %s (qty %d, %s)\n",
			target.Barcode, target.Supply.Name, target.Supply.Quantity, target.Supply.Status)
	case usecase.TargetContainer:
		fmt.Fprintf(out, "  container %s: %s (%d supplies)\n",
			target.Barcode, target.Container.Name, target.Container.Supplies)
	default:
		fmt.Fprintf(out, "  unknown barcode %s\n", target.Barcode)
	}
}

func parseRect(value string) (scanner.Rect, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 4 {
		return scanner.Rect{}, fmt.Errorf("invalid box %q: expected left,top,right,bottom", value)
	}
	var nums [4]float64
	for i, p := range parts {
		n, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return scanner.Rect{}, fmt.Errorf("invalid box %q: %w", value, err)
		}
		nums[i] = n
	}
	return scanner.Rect{Left: nums[0], Top: nums[1], Right: nums[2], Bottom: nums[3]}, nil
}
