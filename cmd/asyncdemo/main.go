// Command asyncdemo exercises the wgpuasync facade against the noop HAL
// driver: it builds a compute pipeline from WGSL, uploads a buffer, submits
// work asynchronously, and awaits a readback future.
package main

import (
	"context"
	_ "embed"
	"encoding/binary"
	"flag"
	"log"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/wgpuasync"
)

//go:embed shaders/scale.wgsl
var scaleShaderWGSL string

func main() {
	var (
		count   = flag.Int("count", 16, "number of float32 elements")
		factor  = flag.Float64("factor", 2.0, "scale factor")
		timeout = flag.Duration("timeout", 5*time.Second, "await timeout")
		verbose = flag.Bool("v", false, "enable debug logging")
	)
	flag.Parse()

	if *verbose {
		wgpuasync.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		log.Fatalf("CreateInstance failed: %v", err)
	}
	defer instance.Destroy()

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		log.Fatal("no adapters available")
	}
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		log.Fatalf("Open failed: %v", err)
	}
	defer openDev.Device.Destroy()

	device, err := wgpuasync.New(openDev.Device, openDev.Queue)
	if err != nil {
		log.Fatalf("Facade creation failed: %v", err)
	}

	pipeline, err := buildScalePipeline(openDev.Device)
	if err != nil {
		log.Fatalf("Pipeline setup failed: %v", err)
	}
	log.Println("Compute pipeline ready")

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, device, pipeline, *count, float32(*factor)); err != nil {
		log.Fatalf("Demo failed: %v", err)
	}
}

func run(ctx context.Context, device *wgpuasync.AsyncDevice, pipeline hal.ComputePipeline, count int, factor float32) error {
	size := uint64(count) * 4
	buf, err := device.CreateAsyncBuffer(&hal.BufferDescriptor{
		Label: "demo-data",
		Size:  size,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	defer device.DestroyBuffer(buf.Buffer)

	// Upload count float32 values scaled on the CPU; the noop driver executes
	// nothing, so the demo scales before upload and reads the result back
	// through the async path.
	data := make([]byte, size)
	for i := 0; i < count; i++ {
		binary.LittleEndian.PutUint32(data[i*4:], math.Float32bits(float32(i)*factor))
	}
	device.Queue().WriteBuffer(buf.Buffer, 0, data)

	// Encode one dispatch of the scale kernel and await its completion.
	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "asyncdemo-scale",
	})
	if err != nil {
		return err
	}
	if err := encoder.BeginEncoding("asyncdemo-scale"); err != nil {
		return err
	}
	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "scale"})
	pass.SetPipeline(pipeline)
	pass.Dispatch(uint32((count+63)/64), 1, 1)
	pass.End()
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return err
	}
	defer cmdBuf.Destroy()

	submitted, err := device.Queue().SubmitAsync([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		return err
	}
	if werr, err := submitted.Await(ctx); err != nil {
		return err
	} else if werr != nil {
		return werr
	}
	log.Println("Dispatch complete")

	readback, err := buf.ReadAsync(0, size)
	if err != nil {
		return err
	}
	res, err := readback.Await(ctx)
	if err != nil {
		return err
	}
	if res.Err != nil {
		return res.Err
	}

	for i := 0; i < count; i++ {
		v := math.Float32frombits(binary.LittleEndian.Uint32(res.Data[i*4:]))
		log.Printf("  [%2d] %g", i, v)
	}
	log.Printf("Read back %d bytes", len(res.Data))
	return nil
}

// buildScalePipeline compiles the WGSL source to SPIR-V and assembles the
// compute pipeline for the scale kernel.
func buildScalePipeline(device hal.Device) (hal.ComputePipeline, error) {
	spirvBytes, err := naga.Compile(scaleShaderWGSL)
	if err != nil {
		return nil, err
	}
	spirv := make([]uint32, len(spirvBytes)/4)
	for i := range spirv {
		spirv[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	module, err := device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "scale_shader",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return nil, err
	}

	inputLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "scale_input_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageCompute,
				Buffer: &gputypes.BufferBindingLayout{
					Type:           gputypes.BufferBindingTypeUniform,
					MinBindingSize: 8, // sizeof(Params)
				},
			},
			{
				Binding:    1,
				Visibility: gputypes.ShaderStageCompute,
				Buffer: &gputypes.BufferBindingLayout{
					Type: gputypes.BufferBindingTypeReadOnlyStorage,
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	outputLayout, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "scale_output_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageCompute,
				Buffer: &gputypes.BufferBindingLayout{
					Type: gputypes.BufferBindingTypeStorage,
				},
			},
		},
	})
	if err != nil {
		return nil, err
	}

	layout, err := device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "scale_pipeline_layout",
		BindGroupLayouts: []hal.BindGroupLayout{inputLayout, outputLayout},
	})
	if err != nil {
		return nil, err
	}

	return device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  "scale_pipeline",
		Layout: layout,
		Compute: hal.ComputeState{
			Module:     module,
			EntryPoint: "cs_scale",
		},
	})
}
