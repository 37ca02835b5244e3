// Package fare defines the trip descriptor accepted by the prediction API and
// the fixed feature table used to turn it into a model input vector.
package fare
