package ports

import "context"

// LLMService define el puerto de salida para los modelos de lenguaje.
// Cualquier adaptador (Anthropic, Gemini, mock) debe implementar esta interfaz;
// la aplicación solo conoce este contrato.
type LLMService interface {
	// Complete envía un prompt con instrucciones de sistema y devuelve el texto generado.
	// El contexto debe llevar un timeout para evitar bloqueos en llamadas externas.
	Complete(ctx context.Context, system, prompt string) (string, error)
	// Name identifica al proveedor en logs y respuestas.
	Name() string
}
