package rpc

import (
	"fmt"
	"net/rpc"

	"github.com/BrugadaSyndrome/bslogger"
)

// newHandler registers object's exported rpc methods under its type name.
func newHandler(object interface{}, logger bslogger.Logger) (*rpc.Server, error) {
	handler := rpc.NewServer()
	if err := handler.Register(object); err != nil {
		logger.Errorf("Registering %T", object)
		return nil, fmt.Errorf("unable to register %T - %w", object, err)
	}
	return handler, nil
}
