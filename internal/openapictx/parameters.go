package openapictx

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// SplitParameters holds the union of path-level and operation-level
// parameters bucketed by location. Name collisions are not resolved
// here; they surface later as duplicate-property errors.
type SplitParameters struct {
	Query  []*openapi3.Parameter
	Path   []*openapi3.Parameter
	Header []*openapi3.Parameter
	Cookie []*openapi3.Parameter
}

// SplitParameters dereferences and classifies global (path item) then
// local (operation) parameters into their four positional buckets.
func (c *Ctx) SplitParameters(global, local openapi3.Parameters) (*SplitParameters, error) {
	split := &SplitParameters{}
	for _, refs := range [2]openapi3.Parameters{global, local} {
		for _, ref := range refs {
			param, err := c.Parameter(ref)
			if err != nil {
				return nil, err
			}
			switch param.In {
			case openapi3.ParameterInQuery:
				split.Query = append(split.Query, param)
			case openapi3.ParameterInPath:
				split.Path = append(split.Path, param)
			case openapi3.ParameterInHeader:
				split.Header = append(split.Header, param)
			case openapi3.ParameterInCookie:
				split.Cookie = append(split.Cookie, param)
			default:
				return nil, fmt.Errorf("parameter %q has unknown location %q", param.Name, param.In)
			}
		}
	}
	return split, nil
}
