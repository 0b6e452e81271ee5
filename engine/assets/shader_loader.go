package assets

import (
	"fmt"
	"os"
	"path/filepath"
)

// ShaderDir is where LoadShader looks for GLSL sources.
var ShaderDir = filepath.Join("assets", "shaders")

// LoadShader reads a GLSL file into a null-terminated string for OpenGL.
func LoadShader(name string) (string, error) {
	path := filepath.Join(ShaderDir, name)
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("load shader %q: %w", name, err)
	}
	if len(b) == 0 || b[len(b)-1] != 0 {
		b = append(b, 0)
	}
	return string(b), nil
}

// LoadShaderPair loads "<name>.vert" and "<name>.frag".
func LoadShaderPair(name string) (vert, frag string, err error) {
	if vert, err = LoadShader(name + ".vert"); err != nil {
		return "", "", err
	}
	if frag, err = LoadShader(name + ".frag"); err != nil {
		return "", "", err
	}
	return vert, frag, nil
}
