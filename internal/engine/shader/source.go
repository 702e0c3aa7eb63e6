// Package shader holds the mesh GLSL sources, the pre-compile hook contract
// used by materials, and OpenGL program compilation.
package shader

import "strings"

// Source is a vertex/fragment pair before compilation. Hooks rewrite it in
// place.
type Source struct {
	Vertex   string
	Fragment string
}

// Hook is a named pre-compile transform. The renderer runs it on a copy of
// the mesh sources right before compiling, and caches the resulting program
// by Name, so two hooks with the same Name must produce the same source.
type Hook struct {
	Name      string
	Transform func(src *Source)
}

// Apply runs the hook on src. A nil hook leaves src unchanged.
func (h *Hook) Apply(src *Source) {
	if h == nil || h.Transform == nil {
		return
	}
	h.Transform(src)
}

// Key returns the program cache key for h.
func (h *Hook) Key() string {
	if h == nil {
		return "base"
	}
	return h.Name
}

// Chunk markers in the mesh sources. Hooks replace them; the compiler sees
// untouched markers as comments.
const (
	ChunkVertexPars   = "//#display_pars_vertex"
	ChunkVertexMain   = "//#display_vertex"
	ChunkFragmentPars = "//#display_pars_fragment"
	ChunkFragmentMain = "//#display_fragment"
)

// Attribute locations shared by the mesh sources and the renderer.
var attributeLocations = map[string]uint32{
	"position": 0,
	"normal":   1,
	"r":        2,
	"g":        3,
	"b":        4,
	"a":        5,
	"h":        6,
}

// AttributeLocation returns the vertex attribute location bound to name.
func AttributeLocation(name string) (uint32, bool) {
	loc, ok := attributeLocations[name]
	return loc, ok
}

// Mesh returns the base lit mesh sources.
func Mesh() Source {
	return Source{Vertex: meshVertex, Fragment: meshFragment}
}

const meshVertex = `#version 410 core

layout (location = 0) in vec3 position;
layout (location = 1) in vec3 normal;
//#display_pars_vertex

uniform mat4 uMVP;
uniform mat4 uModel;

out vec3 vNormal;

void main() {
    vNormal = mat3(uModel) * normal;
    //#display_vertex
    gl_Position = uMVP * vec4(position, 1.0);
}
`

const meshFragment = `#version 410 core

in vec3 vNormal;
//#display_pars_fragment

uniform vec4 uColor;
uniform vec3 uLightDir;

out vec4 FragColor;

void main() {
    float diffuse = max(dot(normalize(vNormal), -uLightDir), 0.0) * 0.7 + 0.3;
    vec4 color = vec4(uColor.rgb * diffuse, uColor.a);
    //#display_fragment
    FragColor = color;
}
`

const channelParsVertex = `layout (location = 2) in float r;
layout (location = 3) in float g;
layout (location = 4) in float b;
layout (location = 5) in float a;
layout (location = 6) in float h;
out vec3 vTint;
out float vAlpha;
out float vHighlight;`

const channelVertex = `vTint = vec3(r, g, b);
    vAlpha = a;
    vHighlight = h;`

const channelParsFragment = `in vec3 vTint;
in float vAlpha;
in float vHighlight;`

// Opaque pass: elements painted non-opaque are left to the transparent twin.
const displayFragment = `if (vAlpha < 0.999) discard;
    if (vHighlight > 0.0) color.rgb = mix(color.rgb, vTint, vHighlight);`

// Transparent pass: only non-opaque elements, blended with their own alpha.
const transparencyFragment = `if (vAlpha >= 0.999 || vAlpha <= 0.0) discard;
    if (vHighlight > 0.0) color.rgb = mix(color.rgb, vTint, vHighlight);
    color.a = vAlpha;`

func injectChannels(src *Source, fragment string) {
	src.Vertex = strings.Replace(src.Vertex, ChunkVertexPars, channelParsVertex, 1)
	src.Vertex = strings.Replace(src.Vertex, ChunkVertexMain, channelVertex, 1)
	src.Fragment = strings.Replace(src.Fragment, ChunkFragmentPars, channelParsFragment, 1)
	src.Fragment = strings.Replace(src.Fragment, ChunkFragmentMain, fragment, 1)
}

// DisplayHook makes opaque materials honor the per-vertex display channels:
// highlighted vertices are tinted and non-opaque ones are discarded.
var DisplayHook = &Hook{
	Name: "display",
	Transform: func(src *Source) {
		injectChannels(src, displayFragment)
	},
}

// TransparencyHook is attached to transparent twin materials. It reads the
// alpha and highlight channels per vertex and blends accordingly.
var TransparencyHook = &Hook{
	Name: "transparency",
	Transform: func(src *Source) {
		injectChannels(src, transparencyFragment)
	},
}
