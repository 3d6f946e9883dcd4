package graphics

// DeviceEventKind is a host graphics-device lifecycle notification.
type DeviceEventKind int

const (
	DeviceInitialize DeviceEventKind = iota
	DeviceShutdown
)

func (k DeviceEventKind) String() string {
	switch k {
	case DeviceInitialize:
		return "initialize"
	case DeviceShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Renderer identifies the host's rendering backend. Only RendererOpenGLCore
// can share its context with auxiliary windows; every other backend leaves
// the manager inert.
type Renderer int

const (
	RendererNull Renderer = iota
	RendererOpenGLCore
	RendererOpenGLES
	RendererD3D11
	RendererD3D12
	RendererVulkan
	RendererMetal
)

func (r Renderer) String() string {
	switch r {
	case RendererNull:
		return "null"
	case RendererOpenGLCore:
		return "opengl-core"
	case RendererOpenGLES:
		return "opengl-es"
	case RendererD3D11:
		return "d3d11"
	case RendererD3D12:
		return "d3d12"
	case RendererVulkan:
		return "vulkan"
	case RendererMetal:
		return "metal"
	default:
		return "unknown"
	}
}
