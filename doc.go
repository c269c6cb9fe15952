// Package vfx provides a per-frame GPU image-enhancement pipeline
// controller. It feeds live video frames through a chain of vendor-owned
// neural enhancement stages (artifact reduction, then super-resolution or
// plain upscaling) and hands a GPU-resident result back to the host
// compositor.
//
// The package tree is organized around three seams:
//
//   - sdk/ abstracts the vendor effects SDK: opaque effect stages, GPU
//     image buffers, execution streams, and inter-image transfers.
//     sdk/softsdk is a CPU reference implementation registered as the
//     fallback backend.
//   - compositor/ abstracts the host compositor: source geometry,
//     render-target textures, and color-space negotiation. GPU hosts can
//     back textures with gputex.
//   - pipeline/ is the core: it validates source geometry against the
//     selected scale factor, sizes and wires the chain of GPU buffers,
//     sequences per-frame transfers and stage invocations, and tears
//     everything down safely against a concurrently running render thread.
//
// This root package carries what every layer shares: structured logging
// (see SetLogger), the fault taxonomy (Fault, FaultKind), and the SDK
// capability descriptor produced once at startup (Probe).
package vfx
