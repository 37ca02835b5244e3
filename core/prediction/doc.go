// Package prediction turns trip descriptors into fare estimates. The Service
// owns the loaded scaler and network, is built once at startup and never
// modified afterwards, so a single instance serves all requests concurrently.
package prediction
