package restindex

import (
	"github.com/kaspanet/restindex/infrastructure/logger"
)

var log = logger.RegisterSubSystem("RIDX")
