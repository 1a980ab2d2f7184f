package testbed

import (
	"encoding/binary"
	stdmath "math"

	"github.com/cockroachdb/errors"
	"github.com/launchdarkly/go-jsonstream/v3/jwriter"
	"github.com/spaghettifunk/anvil/engine"
	"github.com/spaghettifunk/anvil/engine/assets/loaders"
	"github.com/spaghettifunk/anvil/engine/core"
	"github.com/spaghettifunk/anvil/engine/math"
	"github.com/spaghettifunk/anvil/engine/renderer"
	"github.com/spaghettifunk/anvil/engine/renderer/components"
	"github.com/spaghettifunk/anvil/engine/renderer/metadata"
	"github.com/spaghettifunk/anvil/engine/systems"
)

const (
	vertexStride   = 5 * 4
	frameDataSize  = 2 * 64
	checkerSize    = 64
	checkerTexture = "checker"
)

type TestGame struct {
	*engine.Game
	state *gameState
}

type gameState struct {
	device renderer.GraphicsDevice
	jobs   *systems.JobSystem
	camera *components.Camera

	rotation float32

	frameData   metadata.GPUBuffer
	vertices    metadata.GPUBuffer
	indices     metadata.GPUBuffer
	texture     metadata.Texture2D
	sampler     metadata.Sampler
	vs, ps      metadata.Shader
	layout      metadata.InputLayout
	rasterizer  metadata.RasterizerState
	pso         metadata.GraphicsPSO
	statsLogged bool
}

func NewTestGame() *TestGame {
	state := &gameState{camera: components.NewCamera(16.0 / 9.0)}
	tg := &TestGame{
		Game: &engine.Game{
			ApplicationConfig: &engine.ApplicationConfig{
				StartPosX:  100,
				StartPosY:  100,
				Name:       "Anvil Testbed",
				ConfigPath: "config/anvil.toml",
			},
			State: state,
		},
		state: state,
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown
	return tg
}

func (g *TestGame) Initialize(ctx *engine.Context) error {
	core.LogInfo("initializing testbed...")
	s := g.state
	s.device = ctx.Device
	s.jobs = ctx.Jobs

	if err := s.createGeometry(); err != nil {
		return err
	}
	if err := s.createTexture(ctx); err != nil {
		return err
	}
	if err := s.createPipeline(ctx); err != nil {
		return err
	}
	return s.device.CreateBuffer(&metadata.GPUBufferDesc{
		ByteWidth: frameDataSize,
		Usage:     metadata.UsageDefault,
		BindFlags: metadata.BindConstantBuffer,
	}, nil, &s.frameData)
}

// quad returns a unit square in the XY plane facing +Z.
func quad() ([]byte, []byte) {
	corners := [4][5]float32{
		{-0.5, -0.5, 0, 0, 1},
		{0.5, -0.5, 0, 1, 1},
		{0.5, 0.5, 0, 1, 0},
		{-0.5, 0.5, 0, 0, 0},
	}
	vertices := make([]byte, 0, len(corners)*vertexStride)
	for _, c := range corners {
		for _, f := range c {
			vertices = binary.LittleEndian.AppendUint32(vertices, stdmath.Float32bits(f))
		}
	}
	indices := make([]byte, 0, 12)
	for _, i := range []uint16{0, 1, 2, 2, 3, 0} {
		indices = binary.LittleEndian.AppendUint16(indices, i)
	}
	return vertices, indices
}

func (s *gameState) createGeometry() error {
	vertices, indices := quad()
	err := s.device.CreateBuffer(&metadata.GPUBufferDesc{
		ByteWidth: uint32(len(vertices)),
		Usage:     metadata.UsageImmutable,
		BindFlags: metadata.BindVertexBuffer,
	}, &metadata.SubresourceData{SysMem: vertices}, &s.vertices)
	if err != nil {
		return errors.Wrap(err, "vertex buffer")
	}
	err = s.device.CreateBuffer(&metadata.GPUBufferDesc{
		ByteWidth: uint32(len(indices)),
		Usage:     metadata.UsageImmutable,
		BindFlags: metadata.BindIndexBuffer,
	}, &metadata.SubresourceData{SysMem: indices}, &s.indices)
	return errors.Wrap(err, "index buffer")
}

// checker builds an RGBA8 checkerboard with 8x8 cells.
func checker(size int) []byte {
	pix := make([]byte, size*size*4)
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			v := byte(0x30)
			if (x/8+y/8)%2 == 0 {
				v = 0xE0
			}
			i := (y*size + x) * 4
			pix[i], pix[i+1], pix[i+2], pix[i+3] = v, v, v, 0xFF
		}
	}
	return pix
}

func (s *gameState) createTexture(ctx *engine.Context) error {
	if path, _, err := ctx.Assets.Resolve(checkerTexture); err == nil {
		if err := s.device.CreateTextureFromFile(path, true, &s.texture); err != nil {
			return err
		}
	} else {
		core.LogDebug("no %s texture asset, generating one", checkerTexture)
		err := s.device.CreateTexture2D(&metadata.TextureDesc{
			Width:      checkerSize,
			Height:     checkerSize,
			ArraySize:  1,
			MipLevels:  1,
			Format:     metadata.FormatR8G8B8A8Unorm,
			SampleDesc: metadata.SampleDesc{Count: 1},
			Usage:      metadata.UsageImmutable,
			BindFlags:  metadata.BindShaderResource,
		}, []metadata.SubresourceData{{SysMem: checker(checkerSize), SysMemPitch: checkerSize * 4}}, &s.texture)
		if err != nil {
			return err
		}
	}
	return s.device.CreateSamplerState(&metadata.SamplerDesc{
		Filter:         metadata.FilterMinMagMipLinear,
		AddressU:       metadata.TextureAddressWrap,
		AddressV:       metadata.TextureAddressWrap,
		AddressW:       metadata.TextureAddressWrap,
		ComparisonFunc: metadata.ComparisonNever,
		MaxLOD:         stdmath.MaxFloat32,
	}, &s.sampler)
}

func (s *gameState) loadShader(ctx *engine.Context, name string) ([]byte, error) {
	res, err := ctx.Assets.LoadAsset(name, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "shader %s (run `mage build:shaders`)", name)
	}
	code, ok := res.Data.([]byte)
	if !ok {
		return nil, errors.Newf("asset %s is not a shader", name)
	}
	return code, loaders.ValidateSPIRV(code)
}

func (s *gameState) createPipeline(ctx *engine.Context) error {
	vsCode, err := s.loadShader(ctx, "quad_vs")
	if err != nil {
		return err
	}
	psCode, err := s.loadShader(ctx, "quad_ps")
	if err != nil {
		return err
	}
	if err := s.device.CreateVertexShader(vsCode, &s.vs); err != nil {
		return err
	}
	if err := s.device.CreatePixelShader(psCode, &s.ps); err != nil {
		return err
	}

	err = s.device.CreateInputLayout([]metadata.VertexLayoutDesc{
		{SemanticName: "POSITION", Format: metadata.FormatR32G32B32Float, AlignedByteOffset: 0},
		{SemanticName: "TEXCOORD", Format: metadata.FormatR32G32Float, AlignedByteOffset: metadata.AppendAlignedElement},
	}, &s.layout)
	if err != nil {
		return err
	}
	if err := s.device.CreateRasterizerState(&metadata.RasterizerStateDesc{
		FillMode:        metadata.FillSolid,
		CullMode:        metadata.CullNone,
		DepthClipEnable: true,
	}, &s.rasterizer); err != nil {
		return err
	}

	desc := &metadata.GraphicsPSODesc{
		VS:         &s.vs,
		PS:         &s.ps,
		IL:         &s.layout,
		RS:         &s.rasterizer,
		PT:         metadata.PrimitiveTriangleList,
		NumRTs:     1,
		SampleDesc: metadata.SampleDesc{Count: 1},
		SampleMask: 0xFFFFFFFF,
	}
	desc.RTFormats[0] = metadata.FormatB8G8R8A8Unorm
	return s.device.CreateGraphicsPSO(desc, &s.pso)
}

func (g *TestGame) Update(deltaTime float64) error {
	g.state.rotation += float32(deltaTime)
	g.state.camera.Orbit(float32(deltaTime) * 0.25)
	return nil
}

// uploadFrameData records the constant buffer update on the scene thread. Deferred threads
// are submitted ahead of the immediate thread, so the draw sees the new values.
func (s *gameState) uploadFrameData() error {
	model := math.NewMat4EulerZ(s.rotation)
	data := append(s.camera.ViewProjection().Bytes(), model.Bytes()...)
	if err := s.device.UpdateBuffer(&s.frameData, data, metadata.GraphicsThreadScene); err != nil {
		return err
	}
	return s.device.FinishCommandList(metadata.GraphicsThreadScene)
}

func (g *TestGame) Render(device renderer.GraphicsDevice, deltaTime float64) error {
	s := g.state
	err := s.jobs.Run(systems.JobTask{Name: "frame constants", OnStart: s.uploadFrameData})
	if err != nil {
		return err
	}

	thread := metadata.GraphicsThreadImmediate
	device.EventBegin("quad", thread)
	defer device.EventEnd(thread)

	device.BindRenderTargets(nil, nil, thread, -1)
	device.BindGraphicsPSO(&s.pso, thread)
	device.BindConstantBuffer(metadata.ShaderStageVS, &s.frameData, 0, thread)
	device.BindResource(metadata.ShaderStagePS, &s.texture, 0, thread, -1)
	device.BindSampler(metadata.ShaderStagePS, &s.sampler, 0, thread)
	device.BindVertexBuffers([]*metadata.GPUBuffer{&s.vertices}, 0, []uint64{0}, thread)
	device.BindIndexBuffer(&s.indices, metadata.IndexFormat16Bit, 0, thread)
	if err := device.DrawIndexed(6, 0, 0, thread); err != nil {
		return err
	}

	if !s.statsLogged && device.FrameCount() == 120 {
		w := jwriter.NewWriter()
		device.WriteStats(&w)
		if err := w.Error(); err == nil {
			core.LogDebug("device stats: %s", w.Bytes())
		}
		s.statsLogged = true
	}
	return nil
}

func (g *TestGame) OnResize(width, height uint32) error {
	g.state.camera.SetAspect(width, height)
	return nil
}

func (g *TestGame) Shutdown() error {
	s := g.state
	if s.device == nil {
		return nil
	}
	for _, r := range []interface{}{&s.pso, &s.vs, &s.ps, &s.sampler, &s.texture, &s.indices, &s.vertices, &s.frameData} {
		s.device.Destroy(r)
	}
	core.LogInfo("testbed resources released")
	return nil
}
