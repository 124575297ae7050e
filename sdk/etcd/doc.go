// Package etcd proporciona un cliente namespaced para leer configuración desde ETCD.
//
// Estructura de claves:
// El cliente sigue el patrón de ruta `/APP/ENV/VAR_KEY` donde:
//   - `APP`: Nombre de la aplicación (hftgate)
//   - `ENV`: Entorno (development, testing, production)
//   - `VAR_KEY`: Clave de la variable (broker/account_type, engine/address...)
//
// Los endpoints se toman de ETCD_ENDPOINTS (lista separada por comas).
//
// Ejemplo:
//
//	client, err := etcd.New(
//		etcd.WithApp("hftgate"),
//		etcd.WithEnv("production"),
//		etcd.WithEndpointsFromEnv(),
//	)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	accountType, _ := client.GetVarWithDefault(ctx, "broker/account_type", "DEMO")
//	timeout, _ := client.GetVarDurationWithDefault(ctx, "gateway/handshake_timeout_ms", 30*time.Second)
package etcd
