package objectstore

import (
	"go.uber.org/fx"

	"github.com/polkiloo/homecare/internal/config"
	"github.com/polkiloo/homecare/internal/domain/repository"
)

// Module provides the evidence store rooted at the configured directory.
var Module = fx.Provide(
	func(cfg *config.Config) repository.EvidenceStorage { return NewFileStore(cfg.EvidenceDir) },
)
