// Copyright 2026 The Kong Shade Authors
// SPDX-License-Identifier: MIT

package hlsl

import "fmt"

// ShaderModel identifies a target HLSL shader model.
type ShaderModel struct {
	Major uint8
	Minor uint8
}

// Supported shader models.
var (
	ShaderModel5_0 = ShaderModel{5, 0}
	ShaderModel5_1 = ShaderModel{5, 1}
	ShaderModel6_0 = ShaderModel{6, 0}
)

func (s ShaderModel) String() string {
	return fmt.Sprintf("SM %d.%d", s.Major, s.Minor)
}
