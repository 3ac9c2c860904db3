package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/medkit-app/medkit/internal/application"
	"github.com/medkit-app/medkit/internal/database"
	"github.com/medkit-app/medkit/internal/filesystem"
	"github.com/medkit-app/medkit/internal/inventory"
	"github.com/medkit-app/medkit/internal/services"
	"github.com/medkit-app/medkit/internal/usecase"
)

// Server wraps the MCP server with inventory and backup tools
type Server struct {
	server *mcp.Server
	dbCtx  *database.Context
	backup *usecase.Backup
	logger *slog.Logger
	now    func() time.Time
}

// Options configures a Server.
type Options struct {
	Version    string
	BackupSalt string
	Cache      *filesystem.Cache
	Logger     *slog.Logger
}

// NewServer creates a new MCP server instance over an open database
func NewServer(dbCtx *database.Context, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	version := opts.Version
	if version == "" {
		version = "dev"
	}

	mcpServer := mcp.NewServer(&mcp.Implementation{
		Name:    "medkit",
		Version: version,
	}, nil)

	s := &Server{
		server: mcpServer,
		dbCtx:  dbCtx,
		backup: usecase.NewBackup(dbCtx, opts.BackupSalt, opts.Cache, logger),
		logger: logger.With("system", "mcp"),
		now:    time.Now,
	}

	// Register tools
	s.registerTools()

	return s
}

// Run starts the MCP server with stdio transport
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("mcp server starting")
	err := s.server.Run(ctx, &mcp.StdioTransport{})
	if err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("mcp server stopped", "error", err)
		return err
	}
	s.logger.Info("mcp server stopped")
	return nil
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "supply_list",
		Description: "List supplies in the first-aid inventory",
	}, s.handleSupplyList)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "supply_get",
		Description: "Get one supply by barcode, with its uses",
	}, s.handleSupplyGet)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "supplies_expiring",
		Description: "List supplies whose expiration date is the given day (today by default)",
	}, s.handleSuppliesExpiring)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "backup_export",
		Description: "Export a hashed JSON backup of the inventory",
	}, s.handleBackupExport)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "backup_import",
		Description: "Replace the inventory with the contents of a backup",
	}, s.handleBackupImport)
}

// Input/Output types for each tool

type SupplyListInput struct {
	Container *string `json:"container,omitempty" jsonschema:"Only list supplies stored in this container barcode"`
}

type SupplyListOutput struct {
	Supplies []inventory.SupplyView `json:"supplies"`
}

type SupplyGetInput struct {
	Barcode string `json:"barcode" jsonschema:"Barcode of the supply"`
}

type SuppliesExpiringInput struct {
	Date *string `json:"date,omitempty" jsonschema:"Day to check as YYYY-MM-DD, today if omitted"`
}

type SuppliesExpiringOutput struct {
	Date     string                 `json:"date"`
	Supplies []inventory.SupplyView `json:"supplies"`
}

type BackupExportInput struct {
	Cache *bool `json:"cache,omitempty" jsonschema:"Write the backup to the cache directory and return its path"`
}

type BackupExportOutput struct {
	Path   string `json:"path,omitempty"`
	Backup string `json:"backup,omitempty"`
}

type BackupImportInput struct {
	Path   *string `json:"path,omitempty" jsonschema:"Backup file to import"`
	Backup *string `json:"backup,omitempty" jsonschema:"Backup JSON to import when no path is given"`
}

type BackupImportOutput struct {
	Message string `json:"message"`
}

// Tool handlers

func (s *Server) handleSupplyList(ctx context.Context, req *mcp.CallToolRequest, input SupplyListInput) (*mcp.CallToolResult, SupplyListOutput, error) {
	svc := services.NewSupplyService(s.dbCtx)

	var (
		records []database.SupplyRecord
		err     error
	)
	if input.Container != nil && *input.Container != "" {
		records, err = svc.ListByContainer(ctx, *input.Container)
	} else {
		records, err = svc.List(ctx)
	}
	if err != nil {
		return nil, SupplyListOutput{}, fmt.Errorf("failed to list supplies: %w", err)
	}

	return nil, SupplyListOutput{
		Supplies: inventory.NewSupplyViews(records, s.now()),
	}, nil
}

func (s *Server) handleSupplyGet(ctx context.Context, req *mcp.CallToolRequest, input SupplyGetInput) (*mcp.CallToolResult, inventory.SupplyView, error) {
	detail, err := services.NewSupplyService(s.dbCtx).Get(ctx, input.Barcode)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return nil, inventory.SupplyView{}, fmt.Errorf("supply not found: %s", input.Barcode)
		}
		return nil, inventory.SupplyView{}, fmt.Errorf("failed to get supply: %w", err)
	}

	return nil, inventory.NewSupplyDetailView(detail, s.now()), nil
}

func (s *Server) handleSuppliesExpiring(ctx context.Context, req *mcp.CallToolRequest, input SuppliesExpiringInput) (*mcp.CallToolResult, SuppliesExpiringOutput, error) {
	day := s.now()
	if input.Date != nil && *input.Date != "" {
		parsed, err := application.ParseDate(*input.Date)
		if err != nil {
			return nil, SuppliesExpiringOutput{}, err
		}
		day = parsed
	}

	records, err := services.NewSupplyService(s.dbCtx).ExpiringOn(ctx, day)
	if err != nil {
		return nil, SuppliesExpiringOutput{}, fmt.Errorf("failed to query expiring supplies: %w", err)
	}

	return nil, SuppliesExpiringOutput{
		Date:     database.FormatDate(day),
		Supplies: inventory.NewSupplyViews(records, day),
	}, nil
}

func (s *Server) handleBackupExport(ctx context.Context, req *mcp.CallToolRequest, input BackupExportInput) (*mcp.CallToolResult, BackupExportOutput, error) {
	if input.Cache != nil && *input.Cache {
		path, err := s.backup.ExportInCache(ctx)
		if err != nil {
			return nil, BackupExportOutput{}, err
		}
		return nil, BackupExportOutput{Path: path}, nil
	}

	data, err := s.backup.ExportJSON(ctx)
	if err != nil {
		return nil, BackupExportOutput{}, err
	}
	return nil, BackupExportOutput{Backup: data}, nil
}

func (s *Server) handleBackupImport(ctx context.Context, req *mcp.CallToolRequest, input BackupImportInput) (*mcp.CallToolResult, BackupImportOutput, error) {
	switch {
	case input.Path != nil && *input.Path != "":
		if err := s.backup.ImportFile(ctx, *input.Path); err != nil {
			return nil, BackupImportOutput{}, err
		}
	case input.Backup != nil && *input.Backup != "":
		if err := s.backup.Import(ctx, strings.NewReader(*input.Backup)); err != nil {
			return nil, BackupImportOutput{}, err
		}
	default:
		return nil, BackupImportOutput{}, fmt.Errorf("either path or backup is required")
	}

	return nil, BackupImportOutput{
		Message: "Backup imported successfully",
	}, nil
}
