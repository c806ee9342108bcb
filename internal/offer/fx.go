package offer

import (
	"go.uber.org/fx"

	"github.com/alkeincodes/bundle-tool/internal/platform"
)

var Module = fx.Module("offer",
	fx.Provide(func(c *platform.Client) Registrar { return c }),
	fx.Provide(NewService),
)
