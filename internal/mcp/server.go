package mcp

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"aether/internal/config"
	"aether/internal/intent"
	"aether/internal/session"
	"aether/internal/store"
	"aether/internal/world"
)

type Options struct {
	Version      string
	SummaryLimit int
	Logger       *log.Logger
}

type Server struct {
	rules        *config.RuleSet
	compiler     *intent.Compiler
	catalog      *world.Catalog
	sessions     *session.Registry
	db           store.Store
	logger       *log.Logger
	summaryLimit int
	mcp          *sdk.Server
}

func NewServer(rules *config.RuleSet, catalog *world.Catalog, db store.Store, options Options) *Server {
	logger := options.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		rules:        rules,
		compiler:     rules.Compiler(),
		catalog:      catalog,
		sessions:     session.NewRegistry(),
		db:           db,
		logger:       logger,
		summaryLimit: options.SummaryLimit,
		mcp: sdk.NewServer(&sdk.Implementation{
			Name:    "aether",
			Version: options.Version,
		}, nil),
	}
	s.registerTools()
	return s
}

func (s *Server) Run(ctx context.Context, transport sdk.Transport) error {
	return s.mcp.Run(ctx, transport)
}
