package server

import (
	"context"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/chazu/madeup/store"
)

// SketchService implements madeup.v1.SketchService on top of a sketch
// store.
type SketchService struct {
	sketches *store.Store
}

// NewSketchService creates a SketchService.
func NewSketchService(sketches *store.Store) *SketchService {
	return &SketchService{sketches: sketches}
}

// Save stores a sketch under a name, replacing any sketch of that name.
func (s *SketchService) Save(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	name, err := requiredString(req.Msg, "name")
	if err != nil {
		return nil, err
	}
	source, _, err := stringField(req.Msg, "source")
	if err != nil {
		return nil, err
	}

	sk, err := s.sketches.Save(name, source)
	if err != nil {
		return nil, sketchError(err)
	}
	log.Infof("saved sketch %s", sk.Name)
	return response(sketchFields(sk))
}

// Load returns a sketch with its source.
func (s *SketchService) Load(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	name, err := requiredString(req.Msg, "name")
	if err != nil {
		return nil, err
	}
	sk, err := s.sketches.Load(name)
	if err != nil {
		return nil, sketchError(err)
	}
	fields := sketchFields(sk)
	fields["source"] = sk.Source
	return response(fields)
}

// List returns the names and modification times of every sketch, most
// recent first.
func (s *SketchService) List(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	sketches, err := s.sketches.List()
	if err != nil {
		return nil, sketchError(err)
	}
	items := make([]interface{}, len(sketches))
	for i := range sketches {
		items[i] = sketchFields(&sketches[i])
	}
	return response(map[string]interface{}{"sketches": items})
}

// Delete removes a sketch.
func (s *SketchService) Delete(
	ctx context.Context,
	req *connect.Request[structpb.Struct],
) (*connect.Response[structpb.Struct], error) {
	name, err := requiredString(req.Msg, "name")
	if err != nil {
		return nil, err
	}
	if err := s.sketches.Delete(name); err != nil {
		return nil, sketchError(err)
	}
	log.Infof("deleted sketch %s", name)
	return response(map[string]interface{}{})
}
