// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

package meta

import (
	"context"

	"github.com/staranto/envcachego/internal/config"
	mylog "github.com/staranto/envcachego/internal/log"
)

// Meta are the meta-options that are available on all or most commands.
type Meta struct {
	Args    []string
	Config  config.Type
	Context context.Context
	// Router carries routed run logging. It is owned by main and may be nil in
	// tests, in which case commands build their own.
	Router *mylog.Router
}
